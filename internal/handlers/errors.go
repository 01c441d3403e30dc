package handlers

import (
	"errors"
	"fmt"

	"github.com/farhapartex/food-search-proxy/internal/fetchers"
	"github.com/farhapartex/food-search-proxy/internal/models"
)

// ErrorKind is the transport-neutral category of a failed search
type ErrorKind string

const (
	KindInvalidRequest      ErrorKind = "invalid_request"
	KindUpstreamAuth        ErrorKind = "upstream_auth_error"
	KindMalformedResponse   ErrorKind = "malformed_response"
	KindUpstreamTimeout     ErrorKind = "upstream_timeout"
	KindUpstreamUnreachable ErrorKind = "upstream_unreachable"
	KindInternal            ErrorKind = "internal_error"
)

// Classify maps a search error to its ErrorKind
func Classify(err error) ErrorKind {
	var (
		authErr      *fetchers.UpstreamAuthError
		malformedErr *fetchers.MalformedResponseError
		transportErr *fetchers.TransportError
	)

	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		return KindInvalidRequest
	case errors.As(err, &authErr):
		return KindUpstreamAuth
	case errors.As(err, &malformedErr):
		return KindMalformedResponse
	case errors.As(err, &transportErr):
		if transportErr.Timeout {
			return KindUpstreamTimeout
		}
		return KindUpstreamUnreachable
	default:
		return KindInternal
	}
}

// PublicMessage is the error text returned to callers. Token endpoint bodies
// stay out of it; the full error is logged instead.
func PublicMessage(kind ErrorKind, err error) string {
	if kind != KindUpstreamAuth {
		return err.Error()
	}
	var authErr *fetchers.UpstreamAuthError
	if errors.As(err, &authErr) {
		return fmt.Sprintf("FatSecret token endpoint rejected the credentials (status %d)", authErr.StatusCode)
	}
	return "FatSecret token endpoint rejected the credentials"
}
