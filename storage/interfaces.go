package storage

import "marketplace-trends/models"

// Sheet is the first worksheet of a snapshot: the header row and the data
// rows below it, as raw cell text. Rows may be shorter than Header.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// TableReader is the interface any snapshot format must satisfy.
type TableReader interface {
	Read(path string) (*Sheet, error)
}

// TableWriter is the interface any output format must satisfy.
type TableWriter interface {
	// Write creates (or truncates) the file at path and writes t into it.
	Write(path string, t *models.Table) error
	// Ext is the file extension, with the leading dot, of files this writer produces.
	Ext() string
}
