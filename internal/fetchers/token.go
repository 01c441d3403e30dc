package fetchers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/farhapartex/food-search-proxy/internal/metrics"
	"github.com/farhapartex/food-search-proxy/internal/models"
)

const grantTypeClientCredentials = "client_credentials"

// Credentials identify this service to the OAuth token endpoint
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// OAuthTokenProvider exchanges client credentials for a bearer token.
// Every call performs a fresh exchange.
type OAuthTokenProvider struct {
	credentials Credentials
	tokenURL    string
	scope       string
	client      *resty.Client
	now         func() time.Time
}

var _ TokenProvider = (*OAuthTokenProvider)(nil)

// NewOAuthTokenProvider creates a client-credentials token provider
func NewOAuthTokenProvider(credentials Credentials, tokenURL, scope string, timeout time.Duration) *OAuthTokenProvider {
	return &OAuthTokenProvider{
		credentials: credentials,
		tokenURL:    tokenURL,
		scope:       scope,
		client:      newRestyClient(timeout),
		now:         time.Now,
	}
}

// Token requests a new access token from the token endpoint
func (p *OAuthTokenProvider) Token(ctx context.Context) (*models.AccessToken, error) {
	issuedAt := p.now()
	startTime := time.Now()

	resp, err := p.client.R().
		SetContext(ctx).
		SetBasicAuth(p.credentials.ClientID, p.credentials.ClientSecret).
		SetHeader("Accept", "application/json").
		SetFormData(map[string]string{
			"grant_type": grantTypeClientCredentials,
			"scope":      p.scope,
		}).
		Post(p.tokenURL)
	elapsed := time.Since(startTime)

	if err != nil {
		metrics.RecordUpstream(metrics.EndpointToken, "transport_error", elapsed.Seconds())
		return nil, newTransportError(metrics.EndpointToken, err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		metrics.RecordUpstream(metrics.EndpointToken, "rejected", elapsed.Seconds())
		return nil, &UpstreamAuthError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var tokenResp models.TokenResponse
	if err := json.Unmarshal(resp.Body(), &tokenResp); err != nil {
		metrics.RecordUpstream(metrics.EndpointToken, "malformed", elapsed.Seconds())
		return nil, &MalformedResponseError{Endpoint: metrics.EndpointToken, Reason: "invalid JSON", Err: err}
	}
	if tokenResp.AccessToken == "" {
		metrics.RecordUpstream(metrics.EndpointToken, "malformed", elapsed.Seconds())
		return nil, &MalformedResponseError{Endpoint: metrics.EndpointToken, Reason: "missing access_token"}
	}

	metrics.RecordUpstream(metrics.EndpointToken, "success", elapsed.Seconds())
	log.Ctx(ctx).Debug().
		Dur("duration", elapsed).
		Int64("expires_in", tokenResp.ExpiresIn).
		Str("token_type", tokenResp.TokenType).
		Str("granted_scope", tokenResp.Scope).
		Msg("obtained FatSecret access token")

	return &models.AccessToken{
		Value:     tokenResp.AccessToken,
		ExpiresIn: time.Duration(tokenResp.ExpiresIn) * time.Second,
		IssuedAt:  issuedAt,
	}, nil
}
