package services

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"marketplace-trends/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, io.Discard, false) }

func strPtr(s string) *string { return &s }
func fPtr(f float64) *float64 { return &f }
func iPtr(n int64) *int64     { return &n }

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func dayPtr(s string) *time.Time {
	d := day(s)
	return &d
}

var exportHeader = []string{"SKU", "Товар", "Цена", "Отзывы", "Выручка за 7 дн", "Категория", "Продавец", "Текущий остаток (шт)"}

// writeWorkbook saves header and rows as the first sheet of a new workbook.
func writeWorkbook(t *testing.T, path string, header []string, rows [][]any) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f := excelize.NewFile()
	defer f.Close()

	h := make([]any, len(header))
	for i, v := range header {
		h[i] = v
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &h))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

// readWorkbook returns the first sheet as header-keyed rows of raw values.
func readWorkbook(t *testing.T, path string) ([]string, []map[string]string) {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0], excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	header := rows[0]
	var out []map[string]string
	for _, r := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(r) {
				m[h] = r[i]
			}
		}
		out = append(out, m)
	}
	return header, out
}
