package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for file extensions no reader or writer handles.
var ErrUnsupportedFormat = errors.New("unsupported table format")

var readers = map[string]TableReader{
	".xlsx": XLSXReader{},
	".xlsm": XLSXReader{},
	".csv":  CSVReader{},
}

// IsSupported reports whether path has an extension a reader is registered for.
func IsSupported(path string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ReaderFor returns the reader registered for path's extension.
func ReaderFor(path string) (TableReader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	r, ok := readers[ext]
	if !ok {
		return nil, fmt.Errorf("storage: %q: %w", ext, ErrUnsupportedFormat)
	}
	return r, nil
}

// ReadFile reads path with the reader matching its extension.
func ReadFile(path string) (*Sheet, error) {
	r, err := ReaderFor(path)
	if err != nil {
		return nil, err
	}
	return r.Read(path)
}

// XLSXReader reads the first worksheet of an Excel workbook.
type XLSXReader struct{}

// Read returns raw cell values (no number formatting applied), so identifiers
// stored as numbers keep every digit.
func (XLSXReader) Read(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: %q has no worksheets", path)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsx: read rows of %q: %w", path, err)
	}
	return splitHeader(rows), nil
}

// CSVReader reads comma or semicolon separated exports.
type CSVReader struct{}

func (CSVReader) Read(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %q: %w", path, err)
	}
	return splitHeader(rows), nil
}

// sniffDelimiter picks ';' when the header line has more semicolons than commas.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func splitHeader(rows [][]string) *Sheet {
	if len(rows) == 0 {
		return &Sheet{}
	}
	return &Sheet{Header: rows[0], Rows: rows[1:]}
}
