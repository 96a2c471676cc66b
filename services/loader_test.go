package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-trends/models"
	"marketplace-trends/storage"
)

func TestNormalizeSheetKeepsKnownColumns(t *testing.T) {
	sheet := &storage.Sheet{
		Header: []string{" SKU ", "Товар", "Бренд", "Цена", "Отзывы"},
		Rows: [][]string{
			{"000123", "Кружка", "Acme", "199,90", "4"},
			{"", "без артикула", "", "1", "1"},
			{"4567"},
		},
	}
	snap := models.Snapshot{Path: "x.xlsx", Date: dayPtr("2024-01-01"), Index: 3}

	res, err := normalizeSheet(sheet, snap)
	require.NoError(t, err)
	require.Len(t, res.records, 2, "row without SKU is dropped")

	assert.Equal(t, map[string]bool{
		models.ColSKU: true, models.ColTitle: true, models.ColPrice: true, models.ColReviews: true,
	}, res.present)

	first := res.records[0]
	assert.Equal(t, "000123", first.ProductID, "product id stays opaque text")
	assert.Equal(t, strPtr("Кружка"), first.Title)
	assert.Equal(t, fPtr(199.9), first.Price)
	assert.Equal(t, iPtr(4), first.Reviews)
	assert.Nil(t, first.Revenue, "absent column stays missing, not zero")
	assert.Nil(t, first.Seller)
	assert.Equal(t, 3, first.SourceIndex)
	assert.Equal(t, 0, first.RowIndex)
	assert.Equal(t, day("2024-01-01"), *first.Date)

	short := res.records[1]
	assert.Equal(t, "4567", short.ProductID)
	assert.Equal(t, 2, short.RowIndex)
	assert.Nil(t, short.Title)
	assert.Nil(t, short.Price)
}

func TestNormalizeSheetMissingSKU(t *testing.T) {
	sheet := &storage.Sheet{Header: []string{"Товар", "Цена"}, Rows: [][]string{{"a", "1"}}}
	_, err := normalizeSheet(sheet, models.Snapshot{})
	assert.ErrorIs(t, err, ErrMissingIDColumn)
}

func TestNormalizeSheetEmpty(t *testing.T) {
	res, err := normalizeSheet(&storage.Sheet{}, models.Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, res.records)
}

func TestFilterByReviews(t *testing.T) {
	records := []*models.UnifiedRecord{
		{ListingRow: models.ListingRow{ProductID: "low", Reviews: iPtr(199)}},
		{ListingRow: models.ListingRow{ProductID: "edge", Reviews: iPtr(200)}},
		{ListingRow: models.ListingRow{ProductID: "high", Reviews: iPtr(5000)}},
		{ListingRow: models.ListingRow{ProductID: "unknown"}},
	}

	kept := FilterByReviews(records, 200)
	require.Len(t, kept, 1)
	assert.Equal(t, "low", kept[0].ProductID)
}

func fakeSheets(sheets map[string]*storage.Sheet, fail map[string]error) func(string) (*storage.Sheet, error) {
	return func(path string) (*storage.Sheet, error) {
		if err, ok := fail[path]; ok {
			return nil, err
		}
		s, ok := sheets[path]
		if !ok {
			return nil, fmt.Errorf("no fixture for %s", path)
		}
		return s, nil
	}
}

func TestLoaderPreservesCanonicalOrder(t *testing.T) {
	sheets := make(map[string]*storage.Sheet)
	var snaps []models.Snapshot
	for i := 0; i < 8; i++ {
		path := filepath.Join("root", fmt.Sprintf("f%d.xlsx", i))
		sheets[path] = &storage.Sheet{
			Header: []string{"SKU", "Отзывы", "Продавец"},
			Rows: [][]string{
				{fmt.Sprintf("p%d-a", i), "1", "S"},
				{fmt.Sprintf("p%d-b", i), "1"},
			},
		}
		snaps = append(snaps, models.Snapshot{Path: path, Date: dayPtr("2024-01-01"), Index: i})
	}

	l := &Loader{
		logger: newTestLogger(),
		opts:   LoaderOptions{ReviewThreshold: 200, Concurrency: 4},
		read:   fakeSheets(sheets, nil),
	}
	res, err := l.Load(context.Background(), snaps)
	require.NoError(t, err)
	require.Len(t, res.Records, 16)
	assert.Equal(t, 16, res.RowsRead)

	for i, r := range res.Records {
		assert.Equal(t, i/2, r.SourceIndex)
		assert.Equal(t, i%2, r.RowIndex)
	}
	assert.True(t, res.Present[models.ColSeller])
	assert.False(t, res.Present[models.ColPrice])
}

func TestLoaderBadFileIsFatal(t *testing.T) {
	boom := errors.New("corrupt zip")
	snaps := []models.Snapshot{{Path: "ok.xlsx", Index: 0}, {Path: "bad.xlsx", Index: 1}}
	sheets := map[string]*storage.Sheet{"ok.xlsx": {Header: []string{"SKU", "Отзывы"}, Rows: [][]string{{"a", "1"}}}}

	l := &Loader{
		logger: newTestLogger(),
		opts:   LoaderOptions{ReviewThreshold: 200, Concurrency: 2},
		read:   fakeSheets(sheets, map[string]error{"bad.xlsx": boom}),
	}
	_, err := l.Load(context.Background(), snaps)
	assert.ErrorIs(t, err, boom)
}

func TestLoaderSkipsBadFilesWhenHardened(t *testing.T) {
	snaps := []models.Snapshot{
		{Path: "ok.xlsx", Index: 0},
		{Path: "bad.xlsx", Index: 1},
		{Path: "noid.xlsx", Index: 2},
	}
	sheets := map[string]*storage.Sheet{
		"ok.xlsx":   {Header: []string{"SKU", "Отзывы"}, Rows: [][]string{{"a", "1"}}},
		"noid.xlsx": {Header: []string{"Товар"}, Rows: [][]string{{"x"}}},
	}

	l := &Loader{
		logger: newTestLogger(),
		opts:   LoaderOptions{ReviewThreshold: 200, Concurrency: 2, SkipBadFiles: true},
		read:   fakeSheets(sheets, map[string]error{"bad.xlsx": errors.New("corrupt")}),
	}
	res, err := l.Load(context.Background(), snaps)
	require.NoError(t, err)
	assert.Equal(t, []string{"bad.xlsx", "noid.xlsx"}, res.Skipped)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "a", res.Records[0].ProductID)
}

func TestLoaderReadsWorkbooks(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Кат 2024-01-01 2024-01-07.xlsx")
	writeWorkbook(t, path, exportHeader, [][]any{
		{"0012", "Лампа", 100.5, 3, 2000, "Свет", "ООО Лампы", 7},
		{1234567890123, "Торшер", 2500, 250, 10000, "Свет", "ООО Лампы", 1},
	})

	snaps, err := NewScanner(newTestLogger()).Scan(root)
	require.NoError(t, err)

	res, err := NewLoader(newTestLogger(), LoaderOptions{ReviewThreshold: 200}).Load(context.Background(), snaps)
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsRead)
	require.Len(t, res.Records, 1, "row with 250 reviews is filtered")

	r := res.Records[0]
	assert.Equal(t, "0012", r.ProductID)
	assert.Equal(t, fPtr(100.5), r.Price)
	assert.Equal(t, fPtr(2000), r.Revenue)
	assert.Equal(t, fPtr(7), r.Stock)
	assert.Equal(t, strPtr("ООО Лампы"), r.Seller)
}

func TestNormalizeSheetLeavesAmbiguousNumbersEmpty(t *testing.T) {
	sheet := &storage.Sheet{
		Header: []string{"SKU", "Выручка за 7 дн", "Отзывы", "Цена"},
		Rows: [][]string{
			{"1", "15,000", "1,200", "99,5"},
			{"2", "15000", "12", "1 299,00"},
		},
	}

	res, err := normalizeSheet(sheet, models.Snapshot{})
	require.NoError(t, err)
	require.Len(t, res.records, 2)
	assert.Equal(t, 2, res.ambiguous)

	assert.Nil(t, res.records[0].Revenue, "15,000 is not read as 15")
	assert.Nil(t, res.records[0].Reviews)
	assert.Equal(t, fPtr(99.5), res.records[0].Price)
	assert.Equal(t, fPtr(15000), res.records[1].Revenue)
	assert.Equal(t, fPtr(1299), res.records[1].Price)
}
