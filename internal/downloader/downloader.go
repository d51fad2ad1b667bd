// Package downloader streams media bodies to local scratch files.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/iconidentify/xrelay/internal/config"
	"github.com/iconidentify/xrelay/internal/domain"
)

const maxAttempts = 3

// Fetcher downloads media over HTTP with retry and backoff. Redirects
// are followed; the overall timeout is generous because fallback video
// bodies can run to hundreds of megabytes.
type Fetcher struct {
	client    *http.Client
	userAgent string
	cfg       config.DownloadConfig
	logger    *slog.Logger
}

// NewFetcher creates a new HTTP fetcher.
func NewFetcher(cfg config.DownloadConfig, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		userAgent: cfg.UserAgent,
		cfg:       cfg,
		logger:    logger,
	}
}

// FetchToFile streams the body of url into path, retrying retryable
// failures with exponential backoff. On failure no partial file is
// left behind.
func (f *Fetcher) FetchToFile(ctx context.Context, url, path string) error {
	var lastErr error
	delay := f.cfg.RetryDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := f.fetchOnce(ctx, url, path)
		if err == nil {
			return nil
		}

		lastErr = err

		if !isRetryable(err) {
			break
		}
		if attempt == maxAttempts-1 {
			break
		}

		f.logger.Warn("fetch failed, retrying",
			"url", url,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > f.cfg.MaxRetryDelay {
			delay = f.cfg.MaxRetryDelay
		}
	}

	return fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	// Media hosts reject requests that don't look like a browser.
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "video/mp4,video/*;q=0.9,image/*;q=0.9,*/*;q=0.8")
	req.Header.Set("Referer", "https://x.com/")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return domain.ErrURLExpired
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	_, err = io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("write body: %w", err)
	}

	return nil
}

func isRetryable(err error) bool {
	if errors.Is(err, domain.ErrURLExpired) {
		return false
	}
	return true
}
