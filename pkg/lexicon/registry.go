package lexicon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDelay lets an editor finish writing before the file is reloaded.
const watchDelay = 250 * time.Millisecond

// Registry holds the active lexicon and swaps it on reload. Callers take a
// snapshot with Current and pass it down; a reload never changes a lexicon
// already handed out.
type Registry struct {
	mu     sync.RWMutex
	lex    *Lexicon
	path   string
	logger *slog.Logger
}

// NewRegistry creates a registry for the lexicon file at path. An empty path
// selects the built-in lexicon.
func NewRegistry(path string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{path: path, logger: logger}
}

// Load compiles the configured lexicon and makes it current. On error the
// previous lexicon stays active.
func (r *Registry) Load() error {
	var (
		lex *Lexicon
		err error
	)
	if r.path == "" {
		lex, err = Default()
	} else {
		lex, err = LoadFile(r.path, r.logger)
	}
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.lex = lex
	r.mu.Unlock()
	return nil
}

// Reload reloads the lexicon from disk (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

// Current returns the active lexicon, or nil before the first Load.
func (r *Registry) Current() *Lexicon {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lex
}

// Path returns the configured lexicon path ("" for the built-in one).
func (r *Registry) Path() string {
	return r.path
}

// Watch reloads the lexicon whenever its file changes, until ctx is done.
// The parent directory is watched so that editors which replace the file
// by rename are seen too. A failed reload is logged and the previous
// lexicon stays active. Watch returns nil at once for the built-in lexicon.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create lexicon watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(r.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	timer := time.NewTimer(watchDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(watchDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("lexicon watcher error", "error", err)
		case <-timer.C:
			if err := r.Reload(); err != nil {
				r.logger.Error("lexicon changed but reload failed, keeping previous", "path", r.path, "error", err)
				continue
			}
			r.logger.Info("lexicon reloaded after file change", "path", r.path, "terms", r.Current().TermCount())
		}
	}
}
