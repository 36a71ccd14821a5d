package httpservice

import (
	"errors"
	"time"
)

// Observer receives a record of every dispatch. It is how metrics are
// attached to a Service.
type Observer interface {
	ObserveRequest(method string, statusCode int, duration time.Duration)
	ObserveFailure(method, reason string)
}

// Failure reasons passed to Observer.ObserveFailure.
const (
	ReasonUnauthorized  = "unauthorized"
	ReasonRequestFailed = "request_failed"
	ReasonTransport     = "transport"
	ReasonHook          = "hook"
)

type nopObserver struct{}

func (nopObserver) ObserveRequest(string, int, time.Duration) {}
func (nopObserver) ObserveFailure(string, string)             {}

func failureReason(err error) string {
	if errors.Is(err, ErrUnauthorized) {
		return ReasonUnauthorized
	}
	return ReasonRequestFailed
}
