package store

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"

	"sprint-tracker/pkg/circuitbreaker"
)

var (
	ErrNotFound    = errors.New("store: record not found")
	ErrRejected    = errors.New("store: request rejected")
	ErrRemote      = errors.New("store: remote error")
	ErrUnavailable = errors.New("store: unavailable")
	ErrDecode      = errors.New("store: invalid response")
)

// Classify reports whether err is worth retrying and a short kind label for logs and metrics.
func Classify(err error) (retryable bool, kind string) {
	if err == nil {
		return false, "ok"
	}

	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen):
		return false, "circuit_open"
	case errors.Is(err, context.Canceled):
		return false, "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return true, "timeout"
	case errors.Is(err, ErrNotFound):
		return false, "not_found"
	case errors.Is(err, ErrRejected):
		return false, "rejected"
	case errors.Is(err, ErrDecode):
		return false, "decode_error"
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false, "decode_error"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true, "network_timeout"
		}
		return true, "network_error"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true, "network_error"
	}

	if errors.Is(err, ErrUnavailable) {
		return true, "unavailable"
	}
	if errors.Is(err, ErrRemote) {
		return true, "remote_error"
	}

	return false, "unknown_error"
}

// countsAgainstBreaker: only outages trip the breaker, not bad requests.
func countsAgainstBreaker(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrRemote)
}
