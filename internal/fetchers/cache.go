package fetchers

import (
	"context"
	"sync"
	"time"

	"github.com/farhapartex/food-search-proxy/internal/metrics"
	"github.com/farhapartex/food-search-proxy/internal/models"
)

// CachingTokenProvider reuses a token until shortly before it expires.
// Tokens without a reported lifetime are never reused.
type CachingTokenProvider struct {
	next TokenProvider
	skew time.Duration
	now  func() time.Time

	// exchange allows one exchange in flight; waiters give up when their ctx ends
	exchange chan struct{}

	mu    sync.Mutex
	token *models.AccessToken
}

var (
	_ TokenProvider    = (*CachingTokenProvider)(nil)
	_ TokenInvalidator = (*CachingTokenProvider)(nil)
)

// NewCachingTokenProvider wraps next with an expiry-aware token cache
func NewCachingTokenProvider(next TokenProvider, skew time.Duration) *CachingTokenProvider {
	return &CachingTokenProvider{
		next:     next,
		skew:     skew,
		now:      time.Now,
		exchange: make(chan struct{}, 1),
	}
}

// Token returns the cached token when still fresh, otherwise exchanges a new one.
// Callers arriving during an exchange wait for it and reuse its token.
func (c *CachingTokenProvider) Token(ctx context.Context) (*models.AccessToken, error) {
	if token := c.cached(); token != nil {
		metrics.TokenCacheTotal.WithLabelValues("hit").Inc()
		return token, nil
	}

	select {
	case c.exchange <- struct{}{}:
	case <-ctx.Done():
		return nil, newTransportError(metrics.EndpointToken, ctx.Err())
	}
	defer func() { <-c.exchange }()

	if token := c.cached(); token != nil {
		metrics.TokenCacheTotal.WithLabelValues("hit").Inc()
		return token, nil
	}
	metrics.TokenCacheTotal.WithLabelValues("miss").Inc()

	token, err := c.next.Token(ctx)
	if err != nil {
		c.store(nil)
		return nil, err
	}

	if token.ExpiresIn > 0 {
		c.store(token)
	} else {
		c.store(nil)
	}
	return token, nil
}

// Invalidate drops the cached token. The next call performs a fresh exchange.
func (c *CachingTokenProvider) Invalidate() {
	c.store(nil)
}

func (c *CachingTokenProvider) store(token *models.AccessToken) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *CachingTokenProvider) cached() *models.AccessToken {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return nil
	}
	if !c.now().Before(c.token.ExpiresAt().Add(-c.skew)) {
		return nil
	}
	return c.token
}
