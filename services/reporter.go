package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"marketplace-trends/models"
)

// Reporter prints the run summary to a terminal.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Print writes the run overview, the top momentum products, the breakout
// sellers and the output paths.
func (r *Reporter) Print(s *models.RunSummary) {
	sep := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)

	fmt.Fprintf(r.w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(r.w, "\033[1;35m  📈 MARKETPLACE TREND REPORT\033[0m\n")
	fmt.Fprintf(r.w, "\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Fprintf(r.w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(r.w, "  %s\n", thin)
	fmt.Fprintf(r.w, "  Snapshot files         : \033[1m%d\033[0m\n", s.Files)
	if s.UndatedFiles > 0 {
		fmt.Fprintf(r.w, "  Files without dates    : \033[1;31m%d\033[0m\n", s.UndatedFiles)
	}
	if len(s.SkippedFiles) > 0 {
		fmt.Fprintf(r.w, "  Files excluded         : \033[1;31m%d\033[0m\n", len(s.SkippedFiles))
	}
	fmt.Fprintf(r.w, "  Rows read              : \033[1m%d\033[0m\n", s.RowsRead)
	fmt.Fprintf(r.w, "  Rows below review cap  : \033[1m%d\033[0m\n", s.RowsKept)
	fmt.Fprintf(r.w, "  Product-week records   : \033[1m%d\033[0m\n", s.Aggregated)
	fmt.Fprintf(r.w, "  Products               : \033[1m%d\033[0m\n", s.Products)
	fmt.Fprintf(r.w, "  Active last two weeks  : \033[1m%d\033[0m\n", s.ActiveRows)
	fmt.Fprintln(r.w)

	fmt.Fprintf(r.w, "\033[1;33m  Top Revenue Momentum\033[0m\n")
	fmt.Fprintf(r.w, "  %s\n", thin)
	if len(s.TopMomentum) == 0 {
		fmt.Fprintf(r.w, "  No active products\n")
	} else {
		for i, row := range s.TopMomentum {
			title := row.ProductID
			if row.Title != nil {
				title = *row.Title
			}
			fmt.Fprintf(r.w, "  \033[1m%2d.\033[0m %-40s %s\n",
				i+1, truncate(title, 38), formatPercent(row.Momentum))
		}
	}
	fmt.Fprintln(r.w)

	fmt.Fprintf(r.w, "\033[1;33m  Sellers with Breakout Products\033[0m\n")
	fmt.Fprintf(r.w, "  %s\n", thin)
	if len(s.TopSellers) == 0 {
		fmt.Fprintf(r.w, "  No breakout products\n")
	} else {
		for _, sc := range s.TopSellers {
			bar := strings.Repeat("█", sc.Count)
			fmt.Fprintf(r.w, "  %-30s %s (%d)\n", truncate(sc.Seller, 28), bar, sc.Count)
		}
	}

	if len(s.OutputPaths) > 0 {
		fmt.Fprintln(r.w)
		for _, p := range s.OutputPaths {
			fmt.Fprintf(r.w, "  → %s\n", p)
		}
	}

	fmt.Fprintf(r.w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func formatPercent(f float64) string {
	switch {
	case math.IsNaN(f):
		return "\033[2mn/a\033[0m"
	case f >= 0:
		return fmt.Sprintf("\033[1;32m%+.2f%%\033[0m", f)
	default:
		return fmt.Sprintf("\033[1;31m%+.2f%%\033[0m", f)
	}
}

// truncate shortens s to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
