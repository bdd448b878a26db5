package main

import (
	"log"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/arnavsh/promptgate/internal/app"
	"github.com/arnavsh/promptgate/internal/config"
	"github.com/arnavsh/promptgate/internal/provider"
	"github.com/arnavsh/promptgate/internal/ratelimit"
	"github.com/arnavsh/promptgate/internal/storage"
	"github.com/arnavsh/promptgate/internal/tokenizer"
	"github.com/arnavsh/promptgate/internal/transport/http/handler"
)

func main() {
	logger := setupLogger()

	if err := config.EnsureDataDir(); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	if err := config.EnsureConfigFile(); err != nil {
		logger.Warn("could not write example config", "error", err)
	}

	cfg := config.Load()

	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer store.Close()

	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 1e7,
		MaxCost:     1 << 30,
		BufferItems: 64,
	})
	if err != nil {
		log.Fatalf("failed to create cache: %v", err)
	}

	router := provider.NewRouter(provider.DefaultProvider{
		BaseURL: cfg.DefaultBaseURL,
		APIKey:  cfg.DefaultAPIKey,
		Models:  cfg.DefaultModels,
	}, cfg.RetryBackoff, logger)

	limiter := ratelimit.New(cfg.RateLimitCeiling, cfg.RateLimitWindow)

	repo := handler.NewRepo(logger, store, router, limiter, tokenizer.New(), cache)

	printStartupBanner(cfg)

	srv := app.NewServer(cfg, app.NewRouter(repo, logger))
	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
