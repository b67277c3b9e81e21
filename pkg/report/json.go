package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// JSON writes results as an indented json array. values are rounded to precision decimals.
func JSON(w io.Writer, results []Result, precision int) error {
	out := make([]Result, len(results))
	for i, r := range results {
		r.Joint = round(r.Joint, precision)
		rows := make([]Row, len(r.Categories))
		for j, row := range r.Categories {
			row.Observed = round(row.Observed, precision)
			row.Expected = round(row.Expected, precision)
			row.Alpha = round(row.Alpha, precision)
			rows[j] = row
		}
		r.Categories = rows
		out[i] = r
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func round(v float64, precision int) float64 {
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}
