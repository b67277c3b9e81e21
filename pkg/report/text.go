package report

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/progress"
)

// Text writes a column-aligned, colored report. colors may be nil for the default palette.
func Text(w io.Writer, r Result, colors *progress.Colors, precision int) error {
	if colors == nil {
		colors = progress.DefaultColors()
	}

	ew := &errWriter{w: w}
	ew.printf("study %s: %d annotators, continuum [%d, %d)\n", r.Study, r.Annotators, r.Start, r.Start+r.Length)

	catWidth := len("category")
	for _, row := range r.Categories {
		catWidth = max(catWidth, len(row.Category))
	}
	numWidth := max(precision+3, len("expected"))

	ew.printf("%-*s %7s %12s %*s %*s %*s\n", catWidth, "category", "units", "length",
		numWidth, "observed", numWidth, "expected", numWidth, "alpha")
	for _, row := range r.Categories {
		line := fmt.Sprintf("%-*s %7d %12s %*s %*s %*s", catWidth, row.Category, row.Units,
			humanize.Comma(row.AnnotatedLength),
			numWidth, formatFloat(row.Observed, precision),
			numWidth, formatFloat(row.Expected, precision),
			numWidth, alphaCell(row, precision))
		if row.Error != "" {
			ew.printf("%s\n", colors.Warn().Sprint(line))
			continue
		}
		ew.printf("%s\n", colors.Category().Sprint(line))
	}
	ew.printf("%s\n", colors.Joint().Sprintf("joint alpha: %s", formatFloat(r.Joint, precision)))
	return ew.err
}

// errWriter keeps the first write error and skips subsequent writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	if _, err := fmt.Fprintf(e.w, format, args...); err != nil {
		e.err = fmt.Errorf("write report: %w", err)
	}
}
