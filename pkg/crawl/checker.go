package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/coffee-lexicon/pkg/catalog"
)

// checkWorkers bounds concurrent sitemap probes.
const checkWorkers = 4

// CheckResult is the outcome of probing one source's sitemap.
type CheckResult struct {
	Source string
	URL    string
	Status int // 0 on network error
	Err    error
}

// Reachable reports whether the sitemap answered with a 2xx or 3xx status.
func (r CheckResult) Reachable() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 400
}

// Checker periodically probes every catalog source's sitemap and stores
// the last status, so a shop that moved or went offline shows up in
// `crawl -list` before the next crawl fails.
type Checker struct {
	store    *catalog.Store
	logger   *slog.Logger
	interval time.Duration
	client   *http.Client
}

func NewChecker(store *catalog.Store, logger *slog.Logger, interval time.Duration) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		store:    store,
		logger:   logger,
		interval: interval,
		client: &http.Client{
			Timeout: 30 * time.Second,
			// A redirected sitemap is reported as such.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Start checks immediately, then every interval until ctx is done.
func (c *Checker) Start(ctx context.Context) {
	c.CheckAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CheckAll(ctx)
		}
	}
}

// CheckAll probes every source once, persists each status and returns the
// results ordered by source ID.
func (c *Checker) CheckAll(ctx context.Context) []CheckResult {
	sources, err := c.store.Sources(ctx)
	if err != nil {
		c.logger.Error("sitemap check: list sources", "error", err)
		return nil
	}
	if len(sources) == 0 {
		return nil
	}

	results := make([]CheckResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkWorkers)
	for i, src := range sources {
		g.Go(func() error {
			status, err := c.probe(gctx, src.SitemapURL)
			results[i] = CheckResult{Source: src.ID, URL: src.SitemapURL, Status: status, Err: err}
			return nil
		})
	}
	g.Wait()
	if ctx.Err() != nil {
		return nil
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Source < results[j].Source })
	var failed int
	for _, r := range results {
		errMsg := ""
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		if err := c.store.UpdateCheck(ctx, r.Source, r.Status, errMsg); err != nil {
			c.logger.Error("sitemap check: update", "source", r.Source, "error", err)
		}
		if !r.Reachable() {
			failed++
			c.logger.Warn("sitemap unreachable", "source", r.Source, "url", r.URL, "status", r.Status, "error", errMsg)
		}
	}
	c.logger.Info("sitemap check complete", "total", len(results), "ok", len(results)-failed, "failed", failed)
	return results
}

// probe sends a HEAD request, retrying as GET when the shop rejects HEAD.
func (c *Checker) probe(ctx context.Context, url string) (int, error) {
	status, err := c.request(ctx, http.MethodHead, url)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		return c.request(ctx, http.MethodGet, url)
	}
	return status, err
}

func (c *Checker) request(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, url, err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
