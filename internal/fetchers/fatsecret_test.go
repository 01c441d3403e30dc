package fetchers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farhapartex/food-search-proxy/internal/models"
)

func intPtr(n int) *int { return &n }

func TestFatSecretFetcher_Fetch(t *testing.T) {
	var gotQuery url.Values
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"foods":{"food":[{"food_id":"35718","food_name":"Apples"}]}}`))
	}))
	defer ts.Close()

	fetcher := NewFatSecretFetcher(ts.URL, time.Second)
	resp, err := fetcher.Fetch(context.Background(), "abc123", &models.FoodSearchRequest{SearchExpression: "apple"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc123", gotAuth)
	assert.Equal(t, "foods.search", gotQuery.Get("method"))
	assert.Equal(t, "json", gotQuery.Get("format"))
	assert.Equal(t, "apple", gotQuery.Get("search_expression"))
	assert.False(t, gotQuery.Has("max_results"))
	assert.False(t, gotQuery.Has("page_number"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"foods":{"food":[{"food_id":"35718","food_name":"Apples"}]}}`, string(resp.Body))
	assert.Equal(t, "fatsecret", fetcher.Name())
}

func TestFatSecretFetcher_EncodesReservedCharacters(t *testing.T) {
	phrases := []string{
		"mac & cheese",
		"100% juice?",
		"a=b#c",
		"café crème",
		"+plus /slash",
	}

	for _, phrase := range phrases {
		t.Run(phrase, func(t *testing.T) {
			var gotQuery url.Values
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.Query()
				_, _ = w.Write([]byte(`{}`))
			}))
			defer ts.Close()

			_, err := NewFatSecretFetcher(ts.URL, time.Second).
				Fetch(context.Background(), "t", &models.FoodSearchRequest{SearchExpression: phrase})
			require.NoError(t, err)

			assert.Equal(t, phrase, gotQuery.Get("search_expression"))
			assert.Equal(t, "foods.search", gotQuery.Get("method"))
			assert.Equal(t, "json", gotQuery.Get("format"))
		})
	}
}

func TestFatSecretFetcher_OptionalParameters(t *testing.T) {
	var gotQuery url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	req := &models.FoodSearchRequest{SearchExpression: "rice", MaxResults: intPtr(20), PageNumber: intPtr(3)}
	_, err := NewFatSecretFetcher(ts.URL, time.Second).Fetch(context.Background(), "t", req)
	require.NoError(t, err)

	assert.Equal(t, "20", gotQuery.Get("max_results"))
	assert.Equal(t, "3", gotQuery.Get("page_number"))
}

func TestFatSecretFetcher_PassesThroughUpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "error payload with 200", status: http.StatusOK, body: `{"error":{"code":13,"message":"Invalid token"}}`},
		{name: "error payload with 400", status: http.StatusBadRequest, body: `{"error":{"code":2,"message":"Missing required parameter"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			resp, err := NewFatSecretFetcher(ts.URL, time.Second).
				Fetch(context.Background(), "t", &models.FoodSearchRequest{SearchExpression: "apple"})
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.body, string(resp.Body))
		})
	}
}

func TestFatSecretFetcher_FlagsRejectedToken(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		rejected bool
	}{
		{name: "invalid token", body: `{"error":{"code":13,"message":"Invalid access token"}}`, rejected: true},
		{name: "expired token", body: `{"error":{"code":14,"message":"Token expired"}}`, rejected: true},
		{name: "other error", body: `{"error":{"code":2,"message":"Missing required parameter"}}`},
		{name: "results", body: `{"foods":{"total_results":"0"}}`},
		{name: "array body", body: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			resp, err := NewFatSecretFetcher(ts.URL, time.Second).
				Fetch(context.Background(), "t", &models.FoodSearchRequest{SearchExpression: "apple"})
			require.NoError(t, err)
			assert.Equal(t, tt.rejected, resp.TokenRejected)
			assert.Equal(t, tt.body, string(resp.Body))
		})
	}
}

func TestFatSecretFetcher_NonJSONBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer ts.Close()

	_, err := NewFatSecretFetcher(ts.URL, time.Second).
		Fetch(context.Background(), "t", &models.FoodSearchRequest{SearchExpression: "apple"})

	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "search", malformed.Endpoint)
}

func TestFatSecretFetcher_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	searchURL := ts.URL
	ts.Close()

	_, err := NewFatSecretFetcher(searchURL, time.Second).
		Fetch(context.Background(), "t", &models.FoodSearchRequest{SearchExpression: "apple"})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "search", transportErr.Endpoint)
	assert.False(t, transportErr.Timeout)
}

func TestFatSecretFetcher_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	_, err := NewFatSecretFetcher(ts.URL, 50*time.Millisecond).
		Fetch(context.Background(), "t", &models.FoodSearchRequest{SearchExpression: "apple"})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Timeout)
}
