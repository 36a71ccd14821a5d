package httpservice

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrHTTPClient is the root of every validation failure.
	ErrHTTPClient = errors.New("http client error")
	// ErrUnauthorized marks a 401 response.
	ErrUnauthorized = fmt.Errorf("%w: unauthorized", ErrHTTPClient)
	// ErrRequestFailed marks any other error status.
	ErrRequestFailed = fmt.Errorf("%w: request failed", ErrHTTPClient)
)

// StatusError describes a response rejected by Validate.
type StatusError struct {
	// Kind is ErrUnauthorized or ErrRequestFailed.
	Kind       error
	StatusCode int
	Status     string
	Method     string
	URL        string
	// Body is a truncated copy of the response body.
	Body string
}

func (e *StatusError) Error() string {
	prefix := "failed request"
	if errors.Is(e.Kind, ErrUnauthorized) {
		prefix = "failed authentication"
	}
	msg := fmt.Sprintf("%s: %d %s: %s for url: %s",
		prefix, e.StatusCode, statusClass(e.StatusCode), statusText(e), e.URL)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error { return e.Kind }

// AsStatusError extracts a *StatusError from err.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a 401 validation failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRequestFailed reports whether err is a non-401 validation failure.
func IsRequestFailed(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

func statusClass(code int) string {
	if code >= 500 {
		return "Server Error"
	}
	return "Client Error"
}

func statusText(e *StatusError) string {
	if t := http.StatusText(e.StatusCode); t != "" {
		return t
	}
	return e.Status
}
