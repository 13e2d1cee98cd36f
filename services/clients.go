package services

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Upstream error classes the handlers translate into HTTP statuses.
var (
	ErrMissingAPIKey = errors.New("api key not configured")
	ErrNoMatch       = errors.New("no match found")
)

const (
	defaultUpstreamTimeout = 10 * time.Second
	retryAttempts          = 3
	retryBaseWait          = 500 * time.Millisecond
	retryMaxWait           = 4 * time.Second
)

// newRetryingClient builds a resty client with the shared upstream policy:
// fixed timeout, 3 attempts with exponential backoff, retrying transport
// errors, 429s and 5xx responses. Used by the idempotent lookup clients
// (geocoding, weather); non-retried callers use newUpstreamClient.
func newRetryingClient(timeoutSeconds int) *resty.Client {
	return newUpstreamClient(timeoutSeconds).
		SetRetryCount(retryAttempts - 1).
		SetRetryWaitTime(retryBaseWait).
		SetRetryMaxWaitTime(retryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
}

func newUpstreamClient(timeoutSeconds int) *resty.Client {
	timeout := defaultUpstreamTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return resty.New().SetTimeout(timeout)
}
