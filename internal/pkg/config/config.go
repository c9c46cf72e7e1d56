package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	// StartingBalance is the LimCoins grant given on registration.
	StartingBalance int64 `env:"STARTING_BALANCE, default=1000"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Services ServicesConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=limcoins"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	// LockTTL must exceed RemoteTimeout plus the local commit time.
	LockTTL time.Duration `env:"LOCK_TTL, default=30s"`
}

// ServicesConfig locates the remote services the user service depends on.
type ServicesConfig struct {
	AuctionURL    string        `env:"AUCTION_SERVICE_URL,   default=http://localhost:8081"`
	ValuationURL  string        `env:"VALUATION_SERVICE_URL, default=http://localhost:8082"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT,        default=5s"`
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate rejects combinations that would make the service unsafe to run.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" && c.IsProduction() {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.StartingBalance < 0 {
		errs = append(errs, errors.New("STARTING_BALANCE must not be negative"))
	}
	if c.Services.RemoteTimeout <= 0 {
		errs = append(errs, errors.New("REMOTE_TIMEOUT must be positive"))
	}
	if c.Redis.LockTTL <= c.Services.RemoteTimeout {
		errs = append(errs, fmt.Errorf("LOCK_TTL (%s) must exceed REMOTE_TIMEOUT (%s)", c.Redis.LockTTL, c.Services.RemoteTimeout))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads and validates configuration from the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
