package connection

import (
	"time"

	"github.com/cenkalti/backoff"
)

const (
	// DefaultMaxReconnectAttempts bounds automatic retries of one cycle.
	DefaultMaxReconnectAttempts = 5
	// DefaultReconnectDelay is the fixed pause between retries.
	DefaultReconnectDelay = time.Second
)

// NewRetryPolicy returns a constant-delay policy allowing maxRetries retries
// after the initial attempt of a cycle.
func NewRetryPolicy(maxRetries int, delay time.Duration) backoff.BackOff {
	if maxRetries <= 0 {
		return &backoff.StopBackOff{}
	}
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(maxRetries))
}
