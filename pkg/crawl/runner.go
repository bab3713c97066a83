package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/coffee-lexicon/pkg/lexicon"
	"github.com/hazyhaar/coffee-lexicon/pkg/product"
	"github.com/hazyhaar/coffee-lexicon/pkg/shop"
)

// ErrNoPages means a crawl found nothing to parse.
var ErrNoPages = errors.New("no product pages")

// Options tune a crawl.
type Options struct {
	Limit        int      // max pages, 0 for all
	Workers      int      // concurrent pages, default 4
	SkipKeywords []string // titles containing any of these are skipped
	SaveDir      string   // when set, fetched pages are written as <slug>.html
}

// Report summarizes a crawl. Records are in input order.
type Report struct {
	Source  string
	Pages   int
	Skipped int
	Failed  int
	Records []*product.Record
}

// Runner crawls one shop.
type Runner struct {
	fetcher *Fetcher
	adapter shop.Adapter
	lex     *lexicon.Lexicon
	opts    Options
	logger  *slog.Logger
}

// NewRunner binds a fetcher, adapter and lexicon.
func NewRunner(fetcher *Fetcher, adapter shop.Adapter, lex *lexicon.Lexicon, opts Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Runner{fetcher: fetcher, adapter: adapter, lex: lex, opts: opts, logger: logger}
}

type outcome int

const (
	parsed outcome = iota
	skipped
	failed
)

// page is the per-URL slot filled by a worker.
type page struct {
	record  *product.Record
	outcome outcome
}

// Run fetches the sitemap and parses every product page. Page-level
// failures are logged and counted; only context cancellation and sitemap
// errors abort the run.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	urls, err := r.fetcher.ProductURLs(ctx, r.adapter)
	if err != nil {
		return nil, err
	}
	urls = limit(urls, r.opts.Limit)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%s: %w", r.adapter.ID(), ErrNoPages)
	}
	if r.opts.SaveDir != "" {
		if err := os.MkdirAll(r.opts.SaveDir, 0o755); err != nil {
			return nil, fmt.Errorf("create save dir: %w", err)
		}
	}

	return r.each(ctx, urls, func(ctx context.Context, u string) ([]byte, error) {
		body, err := r.fetcher.Fetch(ctx, u)
		if err != nil {
			return nil, err
		}
		if r.opts.SaveDir != "" {
			dest := filepath.Join(r.opts.SaveDir, Slug(u)+".html")
			if err := os.WriteFile(dest, body, 0o644); err != nil {
				r.logger.Warn("save page failed", "url", u, "error", err)
			}
		}
		return body, nil
	})
}

// RunDir parses previously saved pages from dir instead of fetching.
func (r *Runner) RunDir(ctx context.Context, dir string) (*Report, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(files)
	files = limit(files, r.opts.Limit)
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoPages)
	}
	return r.each(ctx, files, func(_ context.Context, path string) ([]byte, error) {
		return os.ReadFile(path)
	})
}

func (r *Runner) each(ctx context.Context, inputs []string, load func(context.Context, string) ([]byte, error)) (*Report, error) {
	pages := make([]page, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pages[i] = r.process(gctx, in, load)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &Report{Source: r.adapter.ID(), Pages: len(inputs)}
	for _, p := range pages {
		switch p.outcome {
		case parsed:
			rep.Records = append(rep.Records, p.record)
		case skipped:
			rep.Skipped++
		case failed:
			rep.Failed++
		}
	}
	r.logger.Info("crawl done", "source", rep.Source, "pages", rep.Pages,
		"parsed", len(rep.Records), "skipped", rep.Skipped, "failed", rep.Failed)
	return rep, nil
}

func (r *Runner) process(ctx context.Context, in string, load func(context.Context, string) ([]byte, error)) page {
	body, err := load(ctx, in)
	if err != nil {
		r.logger.Warn("load page failed", "page", in, "error", err)
		return page{outcome: failed}
	}
	if title := shop.PageTitle(body); shop.ShouldSkip(title, r.opts.SkipKeywords) {
		r.logger.Debug("page skipped", "page", in, "title", title)
		return page{outcome: skipped}
	}
	rec, err := r.adapter.Parse(body, r.lex)
	if err != nil {
		r.logger.Warn("parse page failed", "page", in, "error", err)
		return page{outcome: failed}
	}
	if rec.URL == "" && strings.HasPrefix(in, "http") {
		rec.URL = in
	}
	if rec.ExternalID == "" {
		rec.ExternalID = Slug(in)
	}
	return page{record: rec, outcome: parsed}
}

// Slug is the last path segment of a page URL or file path, without an
// .html extension.
func Slug(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.TrimRight(filepath.ToSlash(p), "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return strings.TrimSuffix(p, ".html")
}

func limit(list []string, n int) []string {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}
