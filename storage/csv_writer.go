package storage

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"marketplace-trends/models"
)

// utf8BOM lets spreadsheet applications detect UTF-8 for the Cyrillic headers.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter writes tables as UTF-8 CSV files.
type CSVWriter struct {
	Comma rune
}

// NewCSVWriter returns a comma separated writer.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{Comma: ','}
}

func (c *CSVWriter) Ext() string { return ".csv" }

// Write creates (or truncates) the CSV file at path and writes the header
// followed by every row. Intermediate directories are created automatically.
func (c *CSVWriter) Write(path string, t *models.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return fmt.Errorf("csv: write bom: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = c.Comma

	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	rec := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i := range rec {
			rec[i] = ""
			if i < len(row) {
				rec[i] = cellString(row[i])
			}
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush %q: %w", path, err)
	}
	return f.Close()
}

func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		switch {
		case math.IsNaN(t):
			return ""
		case math.IsInf(t, 1):
			return "inf"
		case math.IsInf(t, -1):
			return "-inf"
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
