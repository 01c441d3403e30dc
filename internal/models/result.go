package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// FoodSearchRequest is the inbound search body shared by the HTTP and gRPC surfaces
type FoodSearchRequest struct {
	SearchExpression string `json:"search_expression" binding:"required"`
	MaxResults       *int   `json:"max_results,omitempty"`
	PageNumber       *int   `json:"page_number,omitempty"`
}

// MaxResultsLimit is the largest page size the FatSecret search accepts
const MaxResultsLimit = 50

// ErrInvalidRequest marks search requests rejected before any upstream call
var ErrInvalidRequest = errors.New("invalid search request")

// Validate checks the request before it reaches the relay
func (r *FoodSearchRequest) Validate() error {
	if strings.TrimSpace(r.SearchExpression) == "" {
		return fmt.Errorf("%w: search_expression cannot be empty", ErrInvalidRequest)
	}

	if r.MaxResults != nil && (*r.MaxResults < 1 || *r.MaxResults > MaxResultsLimit) {
		return fmt.Errorf("%w: max_results must be between 1 and %d", ErrInvalidRequest, MaxResultsLimit)
	}

	if r.PageNumber != nil && *r.PageNumber < 0 {
		return fmt.Errorf("%w: page_number cannot be negative", ErrInvalidRequest)
	}

	return nil
}

// AccessToken is a bearer token issued by the OAuth token endpoint
type AccessToken struct {
	Value     string
	ExpiresIn time.Duration
	IssuedAt  time.Time
}

// ExpiresAt reports when the token stops being valid. The zero time means unknown.
func (t *AccessToken) ExpiresAt() time.Time {
	if t.ExpiresIn <= 0 {
		return time.Time{}
	}
	return t.IssuedAt.Add(t.ExpiresIn)
}

// TokenResponse represents the OAuth token endpoint response body
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Scope       string `json:"scope"`
}

// SearchResponse is the raw upstream search payload. It is relayed without
// being interpreted.
type SearchResponse struct {
	Body       json.RawMessage
	StatusCode int
	Duration   time.Duration

	// TokenRejected is set when the body reports an invalid or expired access token
	TokenRejected bool
}

// ToProto converts the upstream JSON object into a protobuf Struct
func (r *SearchResponse) ToProto() (*structpb.Struct, error) {
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(r.Body, out); err != nil {
		return nil, fmt.Errorf("upstream payload is not a JSON object: %w", err)
	}
	return out, nil
}

// FoodSearchRequestFromProto reads a search request out of a protobuf Struct
func FoodSearchRequestFromProto(s *structpb.Struct) (*FoodSearchRequest, error) {
	req := &FoodSearchRequest{}
	if s == nil {
		return req, nil
	}

	fields := s.GetFields()
	if v, ok := fields["search_expression"]; ok {
		str, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("search_expression must be a string")
		}
		req.SearchExpression = str.StringValue
	}

	var err error
	if req.MaxResults, err = intField(fields, "max_results"); err != nil {
		return nil, err
	}
	if req.PageNumber, err = intField(fields, "page_number"); err != nil {
		return nil, err
	}

	return req, nil
}

func intField(fields map[string]*structpb.Value, name string) (*int, error) {
	v, ok := fields[name]
	if !ok {
		return nil, nil
	}
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	n := int(num.NumberValue)
	if float64(n) != num.NumberValue {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}
