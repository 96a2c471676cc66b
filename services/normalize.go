package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"marketplace-trends/models"
)

var (
	// numberNoiseRegexp strips grouping spaces and currency/percent suffixes.
	numberNoiseRegexp = regexp.MustCompile(`[\s\x{00A0}\x{202F}₽%]`)

	// commaGroupedRegexp matches "15,000" style values that read equally well
	// as a thousands grouping and as a decimal comma.
	commaGroupedRegexp = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)

	knownHeaders = func() map[string]struct{} {
		m := make(map[string]struct{}, len(models.KnownColumns))
		for _, c := range models.KnownColumns {
			m[normaliseHeader(c)] = struct{}{}
		}
		return m
	}()
)

// normaliseHeader composes Unicode (a decomposed "й" matches the composed
// one) and collapses whitespace.
func normaliseHeader(s string) string {
	return normaliseText(norm.NFC.String(s))
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}

// parseText returns nil for blank cells.
func parseText(raw string) *string {
	s := normaliseText(raw)
	if s == "" {
		return nil
	}
	return &s
}

// parseNumber parses a numeric cell. Examples:
//
//	"1234.5"     → 1234.5
//	"1 234,50 ₽" → 1234.5
//	"1,234.50"   → 1234.5
//	"15,000"     → nil (ambiguous)
//	"" or "n/a"  → nil
func parseNumber(raw string) *float64 {
	s := numberNoiseRegexp.ReplaceAllString(raw, "")
	if s == "" || commaGroupedRegexp.MatchString(s) {
		return nil
	}
	if strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", "")
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// isAmbiguousNumber reports whether parseNumber refuses raw because its comma
// could be either a decimal or a thousands separator.
func isAmbiguousNumber(raw string) bool {
	return commaGroupedRegexp.MatchString(numberNoiseRegexp.ReplaceAllString(raw, ""))
}

// parseCount parses a non-negative integer cell such as a review count.
func parseCount(raw string) *int64 {
	f := parseNumber(raw)
	if f == nil || *f < 0 {
		return nil
	}
	n := int64(math.Round(*f))
	return &n
}
