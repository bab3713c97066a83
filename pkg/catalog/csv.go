package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/hazyhaar/coffee-lexicon/pkg/product"
)

// utf8BOM lets spreadsheet apps detect the encoding of CJK text.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a BOM, the header and one row per record.
func WriteCSV(w io.Writer, records []*product.Record) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(product.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write %s/%s: %w", r.Source, r.ExternalID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile creates path and writes records to it.
func WriteCSVFile(path string, records []*product.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
