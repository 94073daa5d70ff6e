package blocklib

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/blocklistd/blocklistd/pkg/logger"
)

// Fetcher downloads a single artifact file into its namespace directory,
// retrying transient transport failures under the configured backoff. The
// file is written to a .part path first and renamed into place so a
// half-written download is never mistaken for a finished one.
type Fetcher struct {
	client *http.Client
	layout *Layout
	retry  RetryConfig
	log    logger.Logger
}

// NewFetcher creates a fetcher writing through the given layout.
func NewFetcher(client *http.Client, layout *Layout, retry RetryConfig, log logger.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, layout: layout, retry: retry, log: log}
}

// Fetch downloads d into the namespace of (class, ts).
func (f *Fetcher) Fetch(ctx context.Context, class ArtifactClass, ts Timestamp, d Descriptor) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = f.fetchOnce(ctx, class, ts, d)
		if lastErr == nil {
			return nil
		}
		if attempt >= f.retry.MaxRetries || !IsTransient(lastErr) {
			return fmt.Errorf("fetch %s: %w", d.FileName, lastErr)
		}
		f.log.Warning("fetch %s (attempt %d): %v", d.FileName, attempt+1, lastErr)
		if err := f.retry.Wait(ctx, attempt+1); err != nil {
			return err
		}
	}
}

func (f *Fetcher) fetchOnce(ctx context.Context, class ArtifactClass, ts Timestamp, d Descriptor) error {
	dir := f.layout.NamespaceDir(class, ts)
	if err := f.layout.Fs().MkdirAll(dir, 0o755); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.SourceURL, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	final := GetPath(dir, d.FileName)
	part := final + ".part"
	out, err := f.layout.Fs().Create(part)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = f.layout.Fs().Remove(part)
		return err
	}
	if err := out.Close(); err != nil {
		_ = f.layout.Fs().Remove(part)
		return err
	}
	return f.layout.Fs().Rename(part, final)
}
