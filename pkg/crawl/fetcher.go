// Package crawl walks a shop's sitemap, fetches product pages and runs them
// through the shop adapter.
package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// UserAgent is sent with every request. Shopline storefronts serve a bot
// wall to unknown agents.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

const (
	defaultAttempts = 3
	maxPageBytes    = 16 << 20
)

// Fetcher downloads pages with a shared rate limit and retries.
type Fetcher struct {
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

// NewFetcher returns a Fetcher allowing rps requests per second. A
// non-positive rps disables the limit.
func NewFetcher(rps float64, timeout time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
		attempts: defaultAttempts,
		backoff:  time.Second,
	}
}

// Fetch GETs url and returns the body. Failed attempts are retried with
// exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < f.attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt)) * f.backoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retry, err := f.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
		f.logger.Debug("fetch retry", "url", url, "attempt", attempt+1, "error", err)
	}
	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", url, f.attempts, lastErr)
}

// get performs one request. retry is false for errors another attempt
// cannot fix.
func (f *Fetcher) get(ctx context.Context, url string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, true, fmt.Errorf("read %s: %w", url, err)
	}
	return body, false, nil
}
