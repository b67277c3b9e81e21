// Package report assembles agreement results for a study and renders them as text,
// markdown or json.
package report

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/alpha"
	"github.com/dkpro/dkpro-statistics-sub001/pkg/continuum"
)

// ErrUnknownCategory is returned when a requested category does not occur in the study.
var ErrUnknownCategory = errors.New("unknown category")

// Result holds the agreement figures of one study.
type Result struct {
	Study      string  `json:"study"`
	Annotators int     `json:"annotators"`
	Start      int64   `json:"continuum_start"`
	Length     int64   `json:"continuum_length"`
	Categories []Row   `json:"categories"`
	Joint      float64 `json:"joint_alpha"`
}

// Row holds the figures of a single category. Error is set instead of Alpha when the
// category has no expected disagreement.
type Row struct {
	Category        string  `json:"category"`
	Units           int     `json:"units"`
	AnnotatedLength int64   `json:"annotated_length"`
	Observed        float64 `json:"observed"`
	Expected        float64 `json:"expected"`
	Alpha           float64 `json:"alpha"`
	Error           string  `json:"error,omitempty"`
}

// Compute calculates per-category and joint agreement for a closed model.
// categories restricts the report and the joint coefficient to the given categories;
// all categories of the model are used when it is empty.
func Compute(name string, model *continuum.Model, categories []string) (Result, error) {
	res := Result{
		Study:      name,
		Annotators: model.AnnotatorCount(),
		Start:      model.ContinuumStart(),
		Length:     model.ContinuumLength(),
	}

	known := model.Categories()
	selected := known
	if len(categories) > 0 {
		selected = make([]string, 0, len(categories))
		for _, c := range categories {
			if !slices.Contains(known, c) {
				return Result{}, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
			}
			if !slices.Contains(selected, c) {
				selected = append(selected, c)
			}
		}
		slices.Sort(selected)
	}

	calc := alpha.New(model)
	for _, c := range selected {
		s, err := calc.Summary(c)
		row := Row{
			Category:        c,
			Units:           s.Units,
			AnnotatedLength: s.AnnotatedLength,
			Observed:        s.Observed,
			Expected:        s.Expected,
			Alpha:           s.Agreement,
		}
		if err != nil {
			if !errors.Is(err, alpha.ErrDegenerateCategory) {
				return Result{}, fmt.Errorf("compute category %q: %w", c, err)
			}
			row.Error = err.Error()
		}
		res.Categories = append(res.Categories, row)
	}

	joint, err := calc.JointAgreementOver(selected)
	if err != nil {
		return Result{}, fmt.Errorf("compute joint alpha: %w", err)
	}
	res.Joint = joint
	return res, nil
}

// formatFloat formats v with a fixed number of decimals.
func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// alphaCell returns the formatted alpha of a row, or "n/a" for degenerate categories.
func alphaCell(r Row, precision int) string {
	if r.Error != "" {
		return "n/a"
	}
	return formatFloat(r.Alpha, precision)
}
