package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"marketplace-trends/models"
	"marketplace-trends/storage"
	"marketplace-trends/utils"
)

// ErrRootUnreadable is returned when the source root is missing or not a readable directory.
var ErrRootUnreadable = errors.New("source root unreadable")

// dateRangeRegexp matches the "YYYY-MM-DD YYYY-MM-DD" report period in export names.
var dateRangeRegexp = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s+(\d{4}-\d{2}-\d{2})`)

// Output base names; the scanner never treats them as snapshots.
const (
	CombinedTableName = "итоговая_таблица"
	SellerTableName   = "топ_продавцов_по_новым_товарам"
)

// Scanner discovers snapshot files under a root directory.
type Scanner struct {
	logger *utils.Logger
}

// NewScanner creates a Scanner with the given logger.
func NewScanner(logger *utils.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Scan walks root recursively and returns every supported spreadsheet in
// lexicographic path order, each with the start date parsed from its name.
// Snapshot.Index is the position in that order.
func (s *Scanner) Scan(root string) ([]models.Snapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scanner: %w: %v", ErrRootUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanner: %w: %s is not a directory", ErrRootUnreadable, root)
	}

	// WalkDir does not descend into a symlinked root.
	walkRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("scanner: %w: %v", ErrRootUnreadable, err)
	}

	var paths []string
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == walkRoot {
				return err
			}
			s.logger.Warn("[scanner] Skipping unreadable entry %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !storage.IsSupported(path) {
			return nil
		}
		if isIgnored(d.Name()) {
			s.logger.Debug("[scanner] Ignoring %s", path)
			return nil
		}
		if rel, err := filepath.Rel(walkRoot, path); err == nil {
			path = filepath.Join(root, rel)
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanner: %w: %v", ErrRootUnreadable, err)
	}

	sort.Strings(paths)

	snapshots := make([]models.Snapshot, 0, len(paths))
	for i, p := range paths {
		date := ParseSnapshotDate(filepath.Base(p))
		if date == nil {
			s.logger.Warn("[scanner] No date range in file name, rows cannot be placed on the time axis: %s", p)
		}
		snapshots = append(snapshots, models.Snapshot{Path: p, Date: date, Index: i})
	}

	s.logger.Info("[scanner] Found %d snapshot files under %s", len(snapshots), root)
	return snapshots, nil
}

// ParseSnapshotDate returns the first date of the "YYYY-MM-DD YYYY-MM-DD"
// range in name, or nil when there is none or it is not a calendar date.
func ParseSnapshotDate(name string) *time.Time {
	m := dateRangeRegexp.FindStringSubmatch(name)
	if len(m) < 2 {
		return nil
	}
	d, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return nil
	}
	return &d
}

// isIgnored skips Excel lock files and the pipeline's own outputs.
func isIgnored(name string) bool {
	if strings.HasPrefix(name, "~$") {
		return true
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return base == CombinedTableName || base == SellerTableName
}
