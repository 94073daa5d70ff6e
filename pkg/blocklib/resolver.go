package blocklib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/blocklistd/blocklistd/pkg/logger"
)

// maxResolveBody caps how much of the authority's response is read; a valid
// body is a single decimal timestamp.
const maxResolveBody = 64

// Resolver asks the remote authority for the latest publishable timestamp.
// retryCount bounds transport-level retries within this call; callers that
// want another round re-invoke with an incremented count.
type Resolver interface {
	ResolveLatest(ctx context.Context, current Timestamp, appVersion string, retryCount int) Timestamp
}

// HTTPResolver resolves timestamps against an HTTP endpoint. The endpoint
// receives the currently installed timestamp, the application version and
// the retry ordinal as query parameters and answers with a decimal
// timestamp in the response body. Any transport or parse failure yields
// TimestampUnknown.
type HTTPResolver struct {
	client   *http.Client
	endpoint string
	retry    RetryConfig
	log      logger.Logger
}

// NewHTTPResolver creates a resolver for the given endpoint.
func NewHTTPResolver(client *http.Client, endpoint string, retry RetryConfig, log logger.Logger) *HTTPResolver {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPResolver{
		client:   client,
		endpoint: endpoint,
		retry:    retry,
		log:      log,
	}
}

// ResolveLatest implements Resolver.
func (r *HTTPResolver) ResolveLatest(ctx context.Context, current Timestamp, appVersion string, retryCount int) Timestamp {
	for attempt := 0; ; attempt++ {
		ts, err := r.query(ctx, current, appVersion, attempt)
		if err == nil {
			return ts
		}
		if attempt >= retryCount || !IsTransient(err) {
			r.log.Warning("resolver: %v", err)
			return TimestampUnknown
		}
		if werr := r.retry.Wait(ctx, attempt+1); werr != nil {
			r.log.Warning("resolver: %v", werr)
			return TimestampUnknown
		}
	}
}

func (r *HTTPResolver) query(ctx context.Context, current Timestamp, appVersion string, attempt int) (Timestamp, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return TimestampUnknown, fmt.Errorf("endpoint: %w", err)
	}
	q := u.Query()
	q.Set("current", current.String())
	q.Set("app_version", appVersion)
	q.Set("retry", strconv.Itoa(attempt))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return TimestampUnknown, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return TimestampUnknown, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return TimestampUnknown, fmt.Errorf("resolve: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResolveBody))
	if err != nil {
		return TimestampUnknown, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil || v < 0 {
		return TimestampUnknown, fmt.Errorf("resolve: malformed timestamp %q", strings.TrimSpace(string(body)))
	}
	return Timestamp(v), nil
}

var _ Resolver = (*HTTPResolver)(nil)
