package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/coffee-lexicon/pkg/api"
	"github.com/hazyhaar/coffee-lexicon/pkg/catalog"
	"github.com/hazyhaar/coffee-lexicon/pkg/crawl"
	"github.com/hazyhaar/coffee-lexicon/pkg/lexicon"
	"github.com/hazyhaar/coffee-lexicon/pkg/product"
	"github.com/hazyhaar/coffee-lexicon/pkg/shop"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// .env is optional.
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "serve":
		err = cmdServe(os.Args[2:])
	case "crawl":
		err = cmdCrawl(os.Args[2:])
	case "parse":
		err = cmdParse(os.Args[2:], os.Stdin, os.Stdout)
	case "mcp":
		err = cmdMCP(os.Args[2:])
	case "snapshot":
		err = cmdSnapshot(os.Args[2:])
	case "version":
		fmt.Println(version)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "coffeelex %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: coffeelex <command> [flags]

Commands:
  serve     Start the HTTP API
  crawl     Crawl a shop and export its products
  parse     Parse a description from a file or stdin
  mcp       Serve the MCP tools over stdio
  snapshot  Compile the lexicon into a gob snapshot
  version   Print the version
`)
}

// setup loads the config and builds the logger and lexicon registry shared
// by every command.
func setup(cfgPath string) (config, *slog.Logger, *lexicon.Registry, error) {
	cfg, err := loadConfig(cfgPath, os.Getenv)
	if err != nil {
		return cfg, nil, nil, err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return cfg, nil, nil, err
	}
	reg := lexicon.NewRegistry(cfg.Lexicon, logger)
	if err := reg.Load(); err != nil {
		return cfg, nil, nil, fmt.Errorf("load lexicon: %w", err)
	}
	logger.Debug("lexicon loaded", "path", reg.Path(), "terms", reg.Current().TermCount())
	return cfg, logger, reg, nil
}

func openCatalog(ctx context.Context, path string) (*catalog.Store, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	store, err := catalog.Open(path)
	if err != nil {
		return nil, err
	}
	if err := store.Seed(ctx, shop.All()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	fs.Parse(args)

	cfg, logger, reg, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	// SIGINT/SIGTERM: graceful shutdown.
	// SIGHUP: hot reload of the lexicon.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		if cfg.CheckInterval > 0 {
			go crawl.NewChecker(store, logger, cfg.CheckInterval).Start(ctx)
		}
	}

	if cfg.WatchLexicon {
		go func() {
			if err := reg.Watch(ctx); err != nil {
				logger.Error("lexicon watch disabled", "error", err)
			}
		}()
	}

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, reloading lexicon")
			if err := reg.Reload(); err != nil {
				logger.Error("reload failed, keeping previous lexicon", "error", err)
			} else {
				logger.Info("lexicon reloaded", "terms", reg.Current().TermCount())
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(reg, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("coffeelex listening", "addr", cfg.Addr, "catalog", cfg.Catalog != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func cmdCrawl(args []string) error {
	fs := flag.NewFlagSet("crawl", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	source := fs.String("source", "bargain", "shop adapter ID")
	list := fs.Bool("list", false, "list the known sources and exit")
	limit := fs.Int("limit", 0, "max pages to parse (0 = all)")
	useExisting := fs.String("use-existing", "", "parse saved HTML pages from this directory instead of fetching")
	saveHTML := fs.Bool("save-html", false, "save fetched pages under <output-dir>/<source>/html")
	out := fs.String("out", "", "CSV output path (default <output-dir>/<source>_products.csv)")
	skip := fs.String("skip", "", "comma-separated title keywords to skip (overrides config)")
	fs.Parse(args)

	cfg, logger, reg, err := setup(*cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	if *list {
		return printSources(ctx, store, os.Stdout)
	}

	adapter, err := shop.Get(*source)
	if err != nil {
		return err
	}

	opts := crawl.Options{
		Limit:        *limit,
		Workers:      cfg.Crawl.Workers,
		SkipKeywords: cfg.Crawl.SkipKeywords,
	}
	if *skip != "" {
		opts.SkipKeywords = shop.ParseKeywords(*skip)
	}
	if *saveHTML {
		opts.SaveDir = filepath.Join(cfg.Crawl.OutputDir, adapter.ID(), "html")
	}

	fetcher := crawl.NewFetcher(cfg.Crawl.RPS, cfg.Crawl.Timeout, logger)
	runner := crawl.NewRunner(fetcher, adapter, reg.Current(), opts, logger)

	var rep *crawl.Report
	if *useExisting != "" {
		rep, err = runner.RunDir(ctx, *useExisting)
	} else {
		rep, err = runner.Run(ctx)
	}
	if store != nil && *useExisting == "" {
		res := catalog.CrawlResult{Err: err}
		if rep != nil {
			res.Pages, res.Parsed = rep.Pages, len(rep.Records)
		}
		if rerr := store.RecordCrawl(ctx, adapter.ID(), res); rerr != nil {
			logger.Warn("record crawl failed", "error", rerr)
		}
	}
	if err != nil {
		return err
	}

	csvPath := *out
	if csvPath == "" {
		if err := os.MkdirAll(cfg.Crawl.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		csvPath = filepath.Join(cfg.Crawl.OutputDir, adapter.ID()+"_products.csv")
	}
	if err := catalog.WriteCSVFile(csvPath, rep.Records); err != nil {
		return err
	}
	if store != nil {
		if err := store.Upsert(ctx, rep.Records); err != nil {
			return err
		}
	}
	logger.Info("products exported", "source", adapter.ID(), "records", len(rep.Records), "csv", csvPath)
	return nil
}

func printSources(ctx context.Context, store *catalog.Store, w io.Writer) error {
	if store == nil {
		for _, a := range shop.All() {
			fmt.Fprintf(w, "  %-12s  %s  (%s)\n", a.ID(), a.Description(), a.SitemapURL())
		}
		return nil
	}
	sources, err := store.Sources(ctx)
	if err != nil {
		return err
	}
	for _, src := range sources {
		status := "never crawled"
		if src.LastCrawl != nil {
			status = fmt.Sprintf("%s, %d/%d parsed",
				time.Unix(*src.LastCrawl, 0).Format(time.DateTime), derefInt(src.LastParsed), derefInt(src.LastPages))
			if src.LastError != nil {
				status += ", error: " + *src.LastError
			}
		}
		if src.LastStatus != nil {
			status += fmt.Sprintf(", sitemap HTTP %d", *src.LastStatus)
		}
		fmt.Fprintf(w, "  %-12s  %s  [%s]\n", src.ID, src.Description, status)
	}
	return nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func cmdParse(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	title := fs.String("title", "", "product title, used for blend detection")
	fs.Parse(args)

	_, _, reg, err := setup(*cfgPath)
	if err != nil {
		return err
	}

	var text []byte
	if path := fs.Arg(0); path != "" && path != "-" {
		text, err = os.ReadFile(path)
	} else {
		text, err = io.ReadAll(stdin)
	}
	if err != nil {
		return fmt.Errorf("read description: %w", err)
	}

	d := product.Describe(string(text), *title, reg.Current())
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

func cmdMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	// Logs go to stderr; stdout carries the protocol.
	_, logger, reg, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	logger.Info("serving MCP over stdio", "version", version)
	return server.ServeStdio(api.NewMCPServer(reg, version, logger))
}

func cmdSnapshot(args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	in := fs.String("in", "", "lexicon YAML to compile (default: configured or built-in lexicon)")
	out := fs.String("out", "lexicon.gob", "snapshot output path")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath, os.Getenv)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	path := *in
	if path == "" {
		path = cfg.Lexicon
	}
	var src *lexicon.Source
	if path == "" {
		src, err = lexicon.ParseSource(lexicon.DefaultYAML())
	} else {
		src, err = lexicon.LoadSource(path)
	}
	if err != nil {
		return err
	}
	// Compile once so a broken pattern fails here rather than at load time.
	lex, err := lexicon.New(src, logger)
	if err != nil {
		return err
	}
	if err := lexicon.SaveGob(src, *out); err != nil {
		return err
	}
	logger.Info("snapshot written", "out", *out, "terms", lex.TermCount())
	return nil
}
