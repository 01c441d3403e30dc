package fetchers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

const maxErrorBodyLength = 512

// UpstreamAuthError is returned when the token endpoint answers with a non-success status
type UpstreamAuthError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamAuthError) Error() string {
	return fmt.Sprintf("FatSecret token endpoint error: status=%d, body=%s",
		e.StatusCode, TruncateString(e.Body, maxErrorBodyLength))
}

// MalformedResponseError is returned when an upstream body cannot be used as expected
type MalformedResponseError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s response: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s response: %s", e.Endpoint, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// TransportError is returned when an upstream endpoint cannot be reached
type TransportError struct {
	Endpoint string
	Timeout  bool
	Err      error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s request timed out: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("failed to execute %s request: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newTransportError(endpoint string, err error) *TransportError {
	return &TransportError{
		Endpoint: endpoint,
		Timeout:  isTimeout(err),
		Err:      err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// TruncateString truncates a string to maxLength and adds "..." if truncated
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return strings.TrimSpace(s[:maxLength-3]) + "..."
}
