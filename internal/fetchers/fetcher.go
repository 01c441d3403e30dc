package fetchers

import (
	"context"

	"github.com/farhapartex/food-search-proxy/internal/models"
)

// Fetcher is the interface for upstream food search platforms
type Fetcher interface {
	// Fetch runs one search against the platform
	// ctx: context with timeout
	// token: bearer token presented to the platform
	// req: validated search request
	Fetch(ctx context.Context, token string, req *models.FoodSearchRequest) (*models.SearchResponse, error)

	// Name returns the platform name
	Name() string
}

// TokenProvider obtains bearer tokens for a Fetcher
type TokenProvider interface {
	Token(ctx context.Context) (*models.AccessToken, error)
}

// TokenInvalidator is implemented by token providers that keep tokens between calls
type TokenInvalidator interface {
	Invalidate()
}
