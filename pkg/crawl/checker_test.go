package crawl

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/coffee-lexicon/pkg/catalog"
	"github.com/hazyhaar/coffee-lexicon/pkg/shop"
)

func openCatalog(t *testing.T, adapters ...shop.Adapter) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Seed(context.Background(), adapters); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return store
}

// namedAdapter gives a test adapter its own ID.
type namedAdapter struct {
	testAdapter
	id string
}

func (a namedAdapter) ID() string { return a.id }

func named(t *testing.T, id, sitemap string) shop.Adapter {
	return namedAdapter{testAdapter: bargain(t, sitemap).(testAdapter), id: id}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func statuses(t *testing.T, store *catalog.Store) map[string]catalog.Source {
	t.Helper()
	sources, err := store.Sources(context.Background())
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	out := make(map[string]catalog.Source)
	for _, s := range sources {
		out[s.ID] = s
	}
	return out
}

func TestCheckAllMixed(t *testing.T) {
	srv200 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv200.Close()
	srv404 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv404.Close()
	srv301 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://example.com/new")
		w.WriteHeader(http.StatusMovedPermanently)
	}))
	defer srv301.Close()

	noHead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer noHead.Close()

	store := openCatalog(t,
		named(t, "ok", srv200.URL),
		named(t, "missing", srv404.URL),
		named(t, "moved", srv301.URL),
		named(t, "nohead", noHead.URL),
	)
	results := NewChecker(store, quietLogger(), time.Hour).CheckAll(context.Background())

	var ids []string
	for _, r := range results {
		ids = append(ids, r.Source)
	}
	if strings.Join(ids, ",") != "missing,moved,nohead,ok" {
		t.Errorf("result order = %v", ids)
	}
	if results[0].Reachable() || !results[1].Reachable() || !results[2].Reachable() {
		t.Errorf("reachable flags = %+v", results)
	}

	got := statuses(t, store)
	want := map[string]int{"ok": 200, "missing": 404, "moved": 301, "nohead": 200}
	for id, status := range want {
		src := got[id]
		if src.LastStatus == nil || *src.LastStatus != status {
			t.Errorf("%s: status = %v, want %d", id, src.LastStatus, status)
		}
		if src.LastCheck == nil {
			t.Errorf("%s: last_check not set", id)
		}
	}
}

func TestCheckAllNetworkError(t *testing.T) {
	store := openCatalog(t, named(t, "dead", "http://127.0.0.1:1"))
	NewChecker(store, quietLogger(), time.Hour).CheckAll(context.Background())

	src := statuses(t, store)["dead"]
	if src.LastStatus == nil || *src.LastStatus != 0 {
		t.Errorf("expected status 0 for network error, got %v", src.LastStatus)
	}
	if src.LastCheckError == nil || *src.LastCheckError == "" {
		t.Error("expected non-empty last_check_error")
	}
}

func TestCheckAllEmpty(t *testing.T) {
	store := openCatalog(t)
	if got := NewChecker(store, quietLogger(), time.Hour).CheckAll(context.Background()); got != nil {
		t.Errorf("results = %v, want nil", got)
	}
}

func TestCheckerStartStops(t *testing.T) {
	store := openCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		NewChecker(store, quietLogger(), time.Millisecond).Start(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
