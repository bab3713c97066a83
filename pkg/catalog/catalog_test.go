package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/coffee-lexicon/pkg/product"
	"github.com/hazyhaar/coffee-lexicon/pkg/shop"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func sampleRecord(id string) *product.Record {
	return &product.Record{
		Source:     "bargain",
		URL:        "https://www.bargain-cafe.com/products/" + id,
		ExternalID: id,
		Title:      "衣索比亞 耶加雪菲",
		BeanType:   product.SingleOrigin,
		Offer: product.Offer{
			Price:         ptr(450.0),
			PriceOriginal: ptr(500.0),
			WeightG:       ptr(227),
			InStock:       ptr(true),
		},
		Raw: product.RawFields{Process: "日曬", Variety: "原生種, 74110", Origin: "衣索比亞"},
		Canonical: product.CanonicalFields{
			Process: "日曬（Natural）",
			Variety: []string{"衣索比亞原生種（Heirloom）", "74110"},
			Country: "衣索比亞（Ethiopia）",
		},
	}
}

func TestSeedAndRecordCrawl(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Seed(ctx, shop.All()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := s.Seed(ctx, shop.All()); err != nil {
		t.Fatalf("Seed twice: %v", err)
	}

	if err := s.RecordCrawl(ctx, "bargain", CrawlResult{Pages: 10, Parsed: 8}); err != nil {
		t.Fatalf("RecordCrawl: %v", err)
	}
	err := s.RecordCrawl(ctx, "missing", CrawlResult{Err: errors.New("boom")})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordCrawl(missing) = %v, want ErrNotFound", err)
	}

	sources, err := s.Sources(ctx)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(sources) != len(shop.All()) {
		t.Fatalf("got %d sources, want %d", len(sources), len(shop.All()))
	}
	var bargain *Source
	for i := range sources {
		if sources[i].ID == "bargain" {
			bargain = &sources[i]
		}
	}
	if bargain == nil {
		t.Fatal("bargain source not seeded")
	}
	if bargain.LastCrawl == nil || *bargain.LastPages != 10 || *bargain.LastParsed != 8 {
		t.Errorf("crawl status = %+v", bargain)
	}
	if bargain.LastError != nil {
		t.Errorf("LastError = %q, want nil", *bargain.LastError)
	}
}

func TestUpsertAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("yirga")
	if err := s.Upsert(ctx, []*product.Record{rec}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := s.Get(ctx, "bargain", "yirga")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != rec.Title || got.BeanType != product.SingleOrigin {
		t.Errorf("got %+v", got)
	}
	if *got.Price != 450 || *got.WeightG != 227 || !*got.InStock {
		t.Errorf("offer = %+v", got.Offer)
	}
	if len(got.Canonical.Variety) != 2 || got.Canonical.Variety[1] != "74110" {
		t.Errorf("Variety = %q", got.Canonical.Variety)
	}

	rec.Price = ptr(400.0)
	rec.InStock = nil
	if err := s.Upsert(ctx, []*product.Record{rec}); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	got, err = s.Get(ctx, "bargain", "yirga")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got.Price != 400 {
		t.Errorf("Price = %v, want 400", *got.Price)
	}
	if got.InStock != nil {
		t.Errorf("InStock = %v, want nil", *got.InStock)
	}

	if _, err := s.Get(ctx, "bargain", "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nope) = %v, want ErrNotFound", err)
	}
}

func TestUpsertRejectsEmptyID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	bad := sampleRecord("")
	if err := s.Upsert(ctx, []*product.Record{sampleRecord("a"), bad}); err == nil {
		t.Fatal("expected error")
	}
	list, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("transaction not rolled back: %d rows", len(list))
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	other := sampleRecord("x")
	other.Source = "other"
	empty := sampleRecord("c")
	empty.Canonical.Variety = []string{}
	if err := s.Upsert(ctx, []*product.Record{sampleRecord("b"), other, sampleRecord("a"), empty}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	all, err := s.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, r := range all {
		ids = append(ids, r.Source+"/"+r.ExternalID)
	}
	want := []string{"bargain/a", "bargain/b", "bargain/c", "other/x"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	limited, err := s.List(ctx, "bargain", 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 2 || limited[1].ExternalID != "b" {
		t.Errorf("limited = %d rows", len(limited))
	}

	c, err := s.Get(ctx, "bargain", "c")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Canonical.Variety == nil || len(c.Canonical.Variety) != 0 {
		t.Errorf("Variety = %#v, want empty non-nil", c.Canonical.Variety)
	}

	none, err := s.List(ctx, "unknown", 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("List(unknown) = %#v", none)
	}
}

func TestWriteCSV(t *testing.T) {
	rec := sampleRecord("yirga")
	rec.WeightG = nil

	var buf bytes.Buffer
	if err := WriteCSV(&buf, []*product.Record{rec}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), utf8BOM) {
		t.Fatal("missing BOM")
	}

	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), utf8BOM))).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	header, row := rows[0], rows[1]
	col := make(map[string]string)
	for i, h := range header {
		col[h] = row[i]
	}
	checks := map[string]string{
		"external_id":  "yirga",
		"price":        "450",
		"weight_g":     "",
		"in_stock":     "true",
		"norm_variety": "衣索比亞原生種（Heirloom）, 74110",
		"norm_country": "衣索比亞（Ethiopia）",
	}
	for k, want := range checks {
		if col[k] != want {
			t.Errorf("%s = %q, want %q", k, col[k], want)
		}
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSVFile(path, nil); err != nil {
		t.Fatalf("WriteCSVFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, utf8BOM) || !bytes.Contains(data, []byte("norm_variety")) {
		t.Errorf("unexpected file content %q", data)
	}
}
