package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/coffee-lexicon/pkg/shop"
)

type config struct {
	Addr      string      `yaml:"addr" validate:"required"`
	Lexicon   string      `yaml:"lexicon"` // empty: built-in lexicon
	Catalog   string      `yaml:"catalog"` // SQLite path, empty: no catalog
	LogLevel  string      `yaml:"log_level"`
	LogFormat string      `yaml:"log_format" validate:"omitempty,oneof=text json TEXT JSON"`
	Crawl     crawlConfig `yaml:"crawl"`

	// WatchLexicon reloads the lexicon file in serve whenever it changes,
	// in addition to SIGHUP.
	WatchLexicon bool `yaml:"watch_lexicon"`

	// CheckInterval enables the periodic sitemap availability check in
	// serve when a catalog is configured. Zero disables it.
	CheckInterval time.Duration `yaml:"check_interval" validate:"gte=0"`
}

type crawlConfig struct {
	RPS          float64       `yaml:"rps" validate:"gte=0"` // 0: unlimited
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	Workers      int           `yaml:"workers" validate:"min=1,max=64"`
	SkipKeywords []string      `yaml:"skip_keywords"`
	OutputDir    string        `yaml:"output_dir" validate:"required"`
}

func defaultConfig() config {
	return config{
		Addr:      ":8421",
		LogLevel:  "info",
		LogFormat: "text",
		Crawl: crawlConfig{
			RPS:       2,
			Timeout:   30 * time.Second,
			Workers:   4,
			OutputDir: "output",
		},
	}
}

// loadConfig reads the YAML file at path over the defaults. A missing file
// is not an error. COFFEELEX_* variables from getenv override file values.
func loadConfig(path string, getenv func(string) string) (config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}
	if cfg.Crawl.SkipKeywords == nil {
		cfg.Crawl.SkipKeywords = append([]string(nil), shop.DefaultSkipKeywords...)
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	// Report the YAML key rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateConfig checks value ranges once files and env have been merged.
func validateConfig(cfg config) error {
	err := configValidator.Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		// Namespace is "config.crawl.workers"; drop the root type.
		_, field, _ := strings.Cut(e.Namespace(), ".")
		msgs = append(msgs, fmt.Sprintf("%s %s", field, constraintMessage(e)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func constraintMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "min", "gte":
		return "must be at least " + e.Param()
	case "max", "lte":
		return "must not exceed " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	default:
		return "is invalid"
	}
}

func applyEnv(cfg *config, getenv func(string) string) error {
	str := map[string]*string{
		"COFFEELEX_ADDR":       &cfg.Addr,
		"COFFEELEX_LEXICON":    &cfg.Lexicon,
		"COFFEELEX_CATALOG":    &cfg.Catalog,
		"COFFEELEX_LOG_LEVEL":  &cfg.LogLevel,
		"COFFEELEX_LOG_FORMAT": &cfg.LogFormat,
		"COFFEELEX_OUTPUT_DIR": &cfg.Crawl.OutputDir,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if v := getenv("COFFEELEX_CRAWL_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid COFFEELEX_CRAWL_RPS: %w", err)
		}
		cfg.Crawl.RPS = f
	}
	if v := getenv("COFFEELEX_CRAWL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid COFFEELEX_CRAWL_WORKERS: %w", err)
		}
		cfg.Crawl.Workers = n
	}
	if v := getenv("COFFEELEX_CRAWL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid COFFEELEX_CRAWL_TIMEOUT: %w", err)
		}
		cfg.Crawl.Timeout = d
	}
	if v := getenv("COFFEELEX_CHECK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid COFFEELEX_CHECK_INTERVAL: %w", err)
		}
		cfg.CheckInterval = d
	}
	if v := getenv("COFFEELEX_WATCH_LEXICON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid COFFEELEX_WATCH_LEXICON: %w", err)
		}
		cfg.WatchLexicon = b
	}
	if v := getenv("COFFEELEX_SKIP_KEYWORDS"); v != "" {
		cfg.Crawl.SkipKeywords = shop.ParseKeywords(v)
	}
	return nil
}

// newLogger builds the process logger from the log_level and log_format
// settings.
func newLogger(cfg config, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.LogFormat) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
}
