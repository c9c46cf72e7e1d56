package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/limcoins/user-service/docs"
	"github.com/limcoins/user-service/internal/api/handler"
	"github.com/limcoins/user-service/internal/api/middleware"
	"github.com/limcoins/user-service/internal/core/domain"
	"github.com/limcoins/user-service/internal/core/ports"
)

// Deps groups everything the router needs to serve requests.
type Deps struct {
	AuthService  ports.AuthService
	UserService  ports.UserService
	BidService   ports.BidService
	HealthChecks map[string]handler.DependencyCheck
	JWTSecret    string
	Log          zerolog.Logger
	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry, which also holds the service metrics.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "limcoins",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.AuthService, d.UserService)
	userHandler := handler.NewUserHandler(d.UserService)
	bidHandler := handler.NewBidHandler(d.BidService)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret))
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	users := v1.Group("/users")
	users.GET("", userHandler.List, adminOnly)
	users.POST("", userHandler.Create, adminOnly)
	users.GET("/top", userHandler.Top, adminOnly)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update, adminOnly)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	users.POST("/:id/coins/add", userHandler.AddCoins, adminOnly)
	users.POST("/:id/coins/deduct", userHandler.DeductCoins)
	users.GET("/:id/ledger", userHandler.Ledger)

	users.GET("/:id/items", userHandler.Items)
	users.POST("/:id/items/:itemId", userHandler.AddItem, adminOnly)
	users.POST("/:id/items/:itemId/sell", bidHandler.SellItem)

	users.GET("/:id/bids", userHandler.ActiveBids)
	users.GET("/:id/bids/details", bidHandler.BidDetails)
	users.POST("/:id/bids/:auctionId", bidHandler.PlaceBid)
	users.DELETE("/:id/bids/:auctionId", bidHandler.AbandonBid)
	users.POST("/:id/bids/:auctionId/track", userHandler.TrackBid, adminOnly)

	users.GET("/:id/auctions", userHandler.CreatedAuctions)
	users.POST("/:id/auctions", bidHandler.CreateAuction)
	users.POST("/:id/auctions/:auctionId/track", userHandler.TrackAuction, adminOnly)

	return e
}
