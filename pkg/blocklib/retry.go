package blocklib

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

// Default transport retry configuration.
const (
	DEF_MAX_RETRIES = 3
	DEF_BASE_DELAY  = 2 * time.Second
	DEF_MAX_DELAY   = 30 * time.Second
)

// RetryConfig bounds transport-level retries: per-file fetches and remote
// timestamp queries. Backoff is linear in the attempt number, capped at
// MaxDelay.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig returns a RetryConfig with sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: DEF_MAX_RETRIES,
		BaseDelay:  DEF_BASE_DELAY,
		MaxDelay:   DEF_MAX_DELAY,
	}
}

// Backoff computes the delay before retry attempt n (1-based).
func (c RetryConfig) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(attempt) * c.BaseDelay
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// Wait blocks for the attempt's backoff delay or until ctx is cancelled.
func (c RetryConfig) Wait(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.Backoff(attempt)):
		return nil
	}
}

// IsTransient reports whether an error is worth retrying at the transport
// layer. Context cancellation is never transient; connection drops,
// timeouts and throttling responses are.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	patterns := []string{
		"connection reset",
		"connection refused",
		"broken pipe",
		"timeout",
		"temporary failure",
		"no such host",
		"network is unreachable",
		"429",
		"503",
		"too many requests",
		"service unavailable",
	}
	for _, p := range patterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}
