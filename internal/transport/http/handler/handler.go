// Package handler implements the HTTP handlers for the assist API.
package handler

import (
	"log/slog"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/arnavsh/promptgate/internal/provider"
	"github.com/arnavsh/promptgate/internal/ratelimit"
	"github.com/arnavsh/promptgate/internal/storage"
	"github.com/arnavsh/promptgate/internal/tokenizer"
)

// Repo holds the dependencies for HTTP handlers
type Repo struct {
	Logger    *slog.Logger
	Store     storage.Storage
	Router    *provider.Router
	Limiter   *ratelimit.Limiter
	Tokenizer tokenizer.Tokenizer
	Cache     *ristretto.Cache[string, any]
}

// NewRepo creates a new instance of the handler repository
func NewRepo(
	logger *slog.Logger,
	store storage.Storage,
	router *provider.Router,
	limiter *ratelimit.Limiter,
	tok tokenizer.Tokenizer,
	cache *ristretto.Cache[string, any],
) *Repo {
	return &Repo{
		Logger:    logger,
		Store:     store,
		Router:    router,
		Limiter:   limiter,
		Tokenizer: tok,
		Cache:     cache,
	}
}
