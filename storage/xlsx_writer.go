package storage

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"marketplace-trends/models"
)

const defaultSheet = "Sheet1"

// XLSXWriter writes tables as single-sheet Excel workbooks.
type XLSXWriter struct{}

// NewXLSXWriter returns an Excel writer.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

func (x *XLSXWriter) Ext() string { return ".xlsx" }

// Write saves t to path with a bold, frozen header row. Missing and NaN
// values become empty cells; infinities are written as the text inf / -inf.
func (x *XLSXWriter) Write(path string, t *models.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(defaultSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	if len(t.Header) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("xlsx: header style: %w", err)
		}
		if err := f.SetRowStyle(defaultSheet, 1, 1, style); err != nil {
			return fmt.Errorf("xlsx: header style: %w", err)
		}
		if err := f.SetPanes(defaultSheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("xlsx: freeze header: %w", err)
		}
	}

	for r, row := range t.Rows {
		for c, v := range row {
			val, ok := xlsxValue(v)
			if !ok {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("xlsx: cell name: %w", err)
			}
			if err := f.SetCellValue(defaultSheet, cell, val); err != nil {
				return fmt.Errorf("xlsx: write %s: %w", cell, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", path, err)
	}
	return nil
}

// xlsxValue converts a table cell to a value excelize stores natively.
// ok is false when the cell must stay empty.
func xlsxValue(v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case *string:
		if t == nil {
			return nil, false
		}
		return *t, true
	case float64:
		if math.IsNaN(t) {
			return nil, false
		}
		if math.IsInf(t, 0) {
			return cellString(t), true
		}
		return t, true
	default:
		return v, true
	}
}

// NewWriter returns the writer for an output format name ("xlsx" or "csv").
func NewWriter(format string) (TableWriter, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "xlsx", "":
		return NewXLSXWriter(), nil
	case "csv":
		return NewCSVWriter(), nil
	default:
		return nil, fmt.Errorf("storage: output %q: %w", format, ErrUnsupportedFormat)
	}
}
