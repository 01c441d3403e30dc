package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farhapartex/food-search-proxy/internal/config"
	"github.com/farhapartex/food-search-proxy/internal/fetchers"
	"github.com/farhapartex/food-search-proxy/internal/models"
)

// SearchHandler relays food searches: one token exchange, then one search
type SearchHandler struct {
	tokens  fetchers.TokenProvider
	fetcher fetchers.Fetcher
}

// NewSearchHandler creates a search handler from explicit collaborators
func NewSearchHandler(tokens fetchers.TokenProvider, fetcher fetchers.Fetcher) *SearchHandler {
	return &SearchHandler{
		tokens:  tokens,
		fetcher: fetcher,
	}
}

// NewSearchHandlerFromConfig wires the FatSecret token provider and fetcher from configuration
func NewSearchHandlerFromConfig(cfg *config.Config) *SearchHandler {
	var tokens fetchers.TokenProvider = fetchers.NewOAuthTokenProvider(
		fetchers.Credentials{
			ClientID:     cfg.FatSecret.ClientID,
			ClientSecret: cfg.FatSecret.ClientSecret,
		},
		cfg.FatSecret.TokenURL,
		cfg.FatSecret.Scope,
		cfg.Performance.UpstreamTimeout,
	)
	if cfg.Performance.TokenCacheEnabled {
		tokens = fetchers.NewCachingTokenProvider(tokens, cfg.Performance.TokenExpirySkew)
	}

	return NewSearchHandler(
		tokens,
		fetchers.NewFatSecretFetcher(cfg.FatSecret.SearchURL, cfg.Performance.UpstreamTimeout),
	)
}

// Search validates the request, acquires a token and relays the search.
// The token exchange always completes before the search starts.
func (h *SearchHandler) Search(ctx context.Context, req *models.FoodSearchRequest) (*models.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	logger := log.Ctx(ctx)

	token, err := h.tokens.Token(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("platform", h.fetcher.Name()).Msg("token acquisition failed")
		return nil, fmt.Errorf("acquiring access token: %w", err)
	}

	response, err := h.fetcher.Fetch(ctx, token.Value, req)
	if err != nil {
		logger.Warn().Err(err).Str("platform", h.fetcher.Name()).Msg("search relay failed")
		return nil, fmt.Errorf("searching %s: %w", h.fetcher.Name(), err)
	}

	// the body is still relayed; only the next search gets a fresh token
	if response.TokenRejected {
		if invalidator, ok := h.tokens.(fetchers.TokenInvalidator); ok {
			invalidator.Invalidate()
			logger.Warn().Str("platform", h.fetcher.Name()).Msg("access token rejected, cached token dropped")
		}
	}

	logger.Info().
		Str("platform", h.fetcher.Name()).
		Int("upstream_status", response.StatusCode).
		Int("bytes", len(response.Body)).
		Dur("upstream_duration", response.Duration).
		Dur("duration", time.Since(startTime)).
		Msg("search completed")

	return response, nil
}
