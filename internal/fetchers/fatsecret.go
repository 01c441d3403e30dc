package fetchers

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/farhapartex/food-search-proxy/internal/metrics"
	"github.com/farhapartex/food-search-proxy/internal/models"
)

const foodsSearchMethod = "foods.search"

// FatSecret error codes reporting an invalid or expired access token
var tokenErrorCodes = map[int]bool{13: true, 14: true}

type errorPayload struct {
	Error *struct {
		Code int `json:"code"`
	} `json:"error"`
}

// tokenRejected reports whether body is a FatSecret error payload about the access token
func tokenRejected(body []byte) bool {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == nil {
		return false
	}
	return tokenErrorCodes[payload.Error.Code]
}

// FatSecretFetcher relays food searches to the FatSecret platform API
type FatSecretFetcher struct {
	searchURL string
	client    *resty.Client
}

var _ Fetcher = (*FatSecretFetcher)(nil)

// NewFatSecretFetcher creates a new FatSecret fetcher
func NewFatSecretFetcher(searchURL string, timeout time.Duration) *FatSecretFetcher {
	return &FatSecretFetcher{
		searchURL: searchURL,
		client:    newRestyClient(timeout),
	}
}

// Name returns the platform name
func (f *FatSecretFetcher) Name() string {
	return "fatsecret"
}

// Fetch runs foods.search and returns the upstream body untouched. Upstream
// error payloads are returned like any other JSON body.
func (f *FatSecretFetcher) Fetch(ctx context.Context, token string, req *models.FoodSearchRequest) (*models.SearchResponse, error) {
	params := map[string]string{
		"method":            foodsSearchMethod,
		"format":            "json",
		"search_expression": req.SearchExpression,
	}
	if req.MaxResults != nil {
		params["max_results"] = strconv.Itoa(*req.MaxResults)
	}
	if req.PageNumber != nil {
		params["page_number"] = strconv.Itoa(*req.PageNumber)
	}

	startTime := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(f.searchURL)
	elapsed := time.Since(startTime)

	if err != nil {
		metrics.RecordUpstream(metrics.EndpointSearch, "transport_error", elapsed.Seconds())
		return nil, newTransportError(metrics.EndpointSearch, err)
	}

	body := resp.Body()
	if !json.Valid(body) {
		metrics.RecordUpstream(metrics.EndpointSearch, "malformed", elapsed.Seconds())
		return nil, &MalformedResponseError{
			Endpoint: metrics.EndpointSearch,
			Reason:   "body is not JSON (status " + strconv.Itoa(resp.StatusCode()) + ")",
		}
	}

	rejected := tokenRejected(body)
	outcome := "success"
	switch {
	case rejected:
		outcome = "token_rejected"
	case resp.IsError():
		outcome = "upstream_error"
	}
	metrics.RecordUpstream(metrics.EndpointSearch, outcome, elapsed.Seconds())

	log.Ctx(ctx).Debug().
		Int("status", resp.StatusCode()).
		Int("bytes", len(body)).
		Bool("token_rejected", rejected).
		Dur("duration", elapsed).
		Msg("FatSecret search completed")

	return &models.SearchResponse{
		Body:          json.RawMessage(body),
		StatusCode:    resp.StatusCode(),
		Duration:      elapsed,
		TokenRejected: rejected,
	}, nil
}
