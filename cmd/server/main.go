// @title                      LimCoins User Service API
// @version                    1.0
// @description                Users, LimCoins balances, owned items and auction participation.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/limcoins/user-service/internal/api"
	"github.com/limcoins/user-service/internal/api/handler"
	"github.com/limcoins/user-service/internal/core/service"
	mongostore "github.com/limcoins/user-service/internal/infrastructure/db/mongo"
	redisstore "github.com/limcoins/user-service/internal/infrastructure/db/redis"
	"github.com/limcoins/user-service/internal/infrastructure/gateway"
	"github.com/limcoins/user-service/internal/infrastructure/gateway/auction"
	"github.com/limcoins/user-service/internal/infrastructure/gateway/valuation"
	"github.com/limcoins/user-service/internal/infrastructure/queue"
	"github.com/limcoins/user-service/internal/pkg/config"
	"github.com/limcoins/user-service/pkg/logger"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const (
	shutdownTimeout = 10 * time.Second
	journalWorkers  = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "limcoins-user-service",
		Version: buildVersion,
	})
	log.Info().
		Str("version", buildVersion).
		Str("date", buildDate).
		Str("commit", buildCommit).
		Str("env", cfg.Env).
		Msg("starting")

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty, tokens are signed with an empty key")
	}

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	userRepo := mongostore.NewUserRepository(db)
	ledgerStore := mongostore.NewLedgerJournal(db)
	if err := mongostore.EnsureIndexes(ctx, userRepo, ledgerStore); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure mongodb indexes")
	}

	journal := queue.NewJournalDispatcher(journalWorkers, ledgerStore, logger.Component("ledger_journal"))
	journal.Start()

	locker := redisstore.NewUserLocker(rdb, cfg.Redis.LockTTL, logger.Component("user_lock"))

	gwCfg := func(baseURL string) gateway.Config {
		return gateway.Config{BaseURL: baseURL, Timeout: cfg.Services.RemoteTimeout}
	}
	auctions, err := auction.New(gwCfg(cfg.Services.AuctionURL), logger.Component("auction_gateway"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid auction service configuration")
	}
	valuations, err := valuation.New(gwCfg(cfg.Services.ValuationURL), logger.Component("valuation_gateway"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid valuation service configuration")
	}

	userService := service.NewUserService(userRepo, locker, journal, cfg.StartingBalance, logger.Component("user_service"))
	bidService := service.NewBidService(userRepo, locker, journal, auctions, valuations, logger.Component("bid_service"))
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		UserService: userService,
		BidService:  bidService,
		HealthChecks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		JWTSecret: cfg.JWTSecret,
		Log:       logger.Component("http"),
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("received interruption signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during http server shutdown")
	}
	if err := journal.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ledger journal did not drain")
	}
	log.Info().Msg("shutdown complete")
}
