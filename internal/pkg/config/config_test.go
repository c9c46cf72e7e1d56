package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Mongo.Database != "limcoins" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.StartingBalance != 1000 {
		t.Errorf("expected starting balance 1000, got %d", cfg.StartingBalance)
	}
	if cfg.Services.RemoteTimeout != 5*time.Second || cfg.Redis.LockTTL != 30*time.Second {
		t.Errorf("unexpected timeouts: remote=%s lock=%s", cfg.Services.RemoteTimeout, cfg.Redis.LockTTL)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"AUCTION_SERVICE_URL": "http://auctions:9000",
		"REMOTE_TIMEOUT":      "2s",
		"STARTING_BALANCE":    "250",
		"TOKEN_TTL":           "1h",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Services.AuctionURL != "http://auctions:9000" || cfg.Services.RemoteTimeout != 2*time.Second {
		t.Errorf("unexpected services config: %+v", cfg.Services)
	}
	if cfg.StartingBalance != 250 || cfg.TokenTTL != time.Hour {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
}

func TestLoadWith_Validation(t *testing.T) {
	cases := map[string]map[string]string{
		"production without secret": {"ENV": "production"},
		"negative starting balance": {"STARTING_BALANCE": "-1"},
		"lock shorter than remote":  {"LOCK_TTL": "1s", "REMOTE_TIMEOUT": "5s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
