// Package alpha computes Krippendorff's unitized alpha over a closed continuum model.
//
// for a category c, alpha_c = 1 - Do_c/De_c where Do_c is the observed disagreement
// between every ordered pair of annotators and De_c the disagreement expected by chance.
// the joint coefficient pools disagreements of all categories before taking the ratio.
package alpha

import (
	"errors"
	"fmt"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/continuum"
)

// sentinel errors, match with errors.Is.
var (
	// ErrNotClosed is returned when the study has not been closed yet.
	ErrNotClosed = errors.New("continuum model not closed")
	// ErrCategoryMismatch is returned when sections of different categories are compared.
	ErrCategoryMismatch = errors.New("category mismatch")
	// ErrDegenerateCategory is returned when the expected disagreement is zero.
	ErrDegenerateCategory = errors.New("degenerate category: zero expected disagreement")
	// ErrTooFewAnnotators is returned for studies with a single annotator. it wraps
	// ErrDegenerateCategory since no pair exists to observe disagreement between.
	ErrTooFewAnnotators = fmt.Errorf("%w: at least two annotators required", ErrDegenerateCategory)
)

// Study is the read-only view of a continuum model needed by the calculator.
type Study interface {
	Closed() bool
	AnnotatorCount() int
	ContinuumLength() int64
	Categories() []string
	Sections(category string, annotator int) []continuum.Section
}

// Calculator computes unitized alpha coefficients. it holds no mutable state and
// may be shared between goroutines as long as the study is closed.
type Calculator struct {
	study Study
}

// New creates a calculator for the given study.
func New(study Study) *Calculator {
	return &Calculator{study: study}
}

// CategoryResult bundles the coefficients of one category.
type CategoryResult struct {
	Category        string
	Observed        float64
	Expected        float64
	Agreement       float64
	Units           int   // number of annotated sections over all annotators
	AnnotatedLength int64 // summed length of annotated sections over all annotators
}

// ObservedDisagreement returns Do_c: the sum of δ(u,v) over all sections u, v of the
// category from every ordered pair of distinct annotators, divided by m(m-1)L².
// a study with fewer than two annotators fails with ErrTooFewAnnotators.
func (c *Calculator) ObservedDisagreement(category string) (float64, error) {
	if !c.study.Closed() {
		return 0, ErrNotClosed
	}

	m := c.study.AnnotatorCount()
	if m < 2 {
		return 0, ErrTooFewAnnotators
	}
	sections := c.sectionsByAnnotator(category)

	var sum float64
	for i := range m {
		for j := range m {
			if i == j {
				continue
			}
			for _, u := range sections[i] {
				for _, v := range sections[j] {
					d, err := Delta(u, v)
					if err != nil {
						return 0, err
					}
					sum += d
				}
			}
		}
	}

	l := float64(c.study.ContinuumLength())
	denom := float64(m) * float64(m-1) * l * l
	if denom == 0 {
		return 0, nil
	}
	return sum / denom, nil
}

// ExpectedDisagreement returns De_c, the disagreement expected when units of the
// category are placed at random over the continuum.
//
// every annotated section of length l contributes
//
//	(N_c-1)/3 · (2l³ - 3l² + l) + l² · Σ (1-v_h)(l_h - l + 1)
//
// where N_c is the number of annotated sections of the category and the inner sum runs
// over all sections h of the category (any annotator) with l_h ≥ l. the total is scaled
// by 2/L and divided by mL(mL-1) - Σ l(l-1).
//
// N_c is a count, not the summed annotated length, and the per-unit term is not
// multiplied by l once more. only this reading reproduces De_c = 0.0532 and
// alpha_c = 0.7286 for category c of Krippendorff's 1995 example.
func (c *Calculator) ExpectedDisagreement(category string) (float64, error) {
	if !c.study.Closed() {
		return 0, ErrNotClosed
	}

	var all []continuum.Section
	for _, seq := range c.sectionsByAnnotator(category) {
		all = append(all, seq...)
	}

	var units float64
	for _, s := range all {
		units += float64(s.Kind.Value())
	}

	var enumerator, lengthCorrection float64
	for _, cig := range all {
		if !cig.IsAnnotated() {
			continue
		}
		l := float64(cig.Length)
		term := (units - 1) / 3.0 * (2*l*l*l - 3*l*l + l)

		var gaps float64
		for _, cjh := range all {
			if cjh.Length < cig.Length {
				continue
			}
			gaps += float64(1-cjh.Kind.Value()) * float64(cjh.Length-cig.Length+1)
		}
		enumerator += term + l*l*gaps
		lengthCorrection += l * (l - 1)
	}

	length := float64(c.study.ContinuumLength())
	if length == 0 {
		return 0, nil
	}
	enumerator *= 2.0 / length

	ml := float64(c.study.AnnotatorCount()) * length
	denominator := ml*(ml-1) - lengthCorrection
	if denominator == 0 {
		return 0, nil
	}
	return enumerator / denominator, nil
}

// CategoryAgreement returns alpha_c = 1 - Do_c/De_c.
func (c *Calculator) CategoryAgreement(category string) (float64, error) {
	observed, err := c.ObservedDisagreement(category)
	if err != nil {
		return 0, err
	}
	expected, err := c.ExpectedDisagreement(category)
	if err != nil {
		return 0, err
	}
	if expected == 0 {
		return 0, fmt.Errorf("category %q: %w", category, ErrDegenerateCategory)
	}
	return 1 - observed/expected, nil
}

// JointAgreement returns 1 - ΣDo_c/ΣDe_c over all categories of the study.
// categories are pooled before the ratio is taken, so this is not the mean of the
// per-category coefficients.
func (c *Calculator) JointAgreement() (float64, error) {
	if !c.study.Closed() {
		return 0, ErrNotClosed
	}
	return c.JointAgreementOver(c.study.Categories())
}

// JointAgreementOver pools the disagreements of the given categories only.
func (c *Calculator) JointAgreementOver(categories []string) (float64, error) {
	if !c.study.Closed() {
		return 0, ErrNotClosed
	}
	if c.study.AnnotatorCount() < 2 {
		return 0, fmt.Errorf("joint: %w", ErrTooFewAnnotators)
	}

	var observed, expected float64
	for _, cat := range categories {
		do, err := c.ObservedDisagreement(cat)
		if err != nil {
			return 0, fmt.Errorf("category %q: %w", cat, err)
		}
		de, err := c.ExpectedDisagreement(cat)
		if err != nil {
			return 0, fmt.Errorf("category %q: %w", cat, err)
		}
		observed += do
		expected += de
	}
	if expected == 0 {
		return 0, fmt.Errorf("joint: %w", ErrDegenerateCategory)
	}
	return 1 - observed/expected, nil
}

// Summary returns all coefficients of a category. on ErrDegenerateCategory the result
// still carries observed and expected disagreement and the unit counts.
func (c *Calculator) Summary(category string) (CategoryResult, error) {
	res := CategoryResult{Category: category}

	observed, err := c.ObservedDisagreement(category)
	if err != nil {
		return res, err
	}
	expected, err := c.ExpectedDisagreement(category)
	if err != nil {
		return res, err
	}
	res.Observed, res.Expected = observed, expected

	for _, seq := range c.sectionsByAnnotator(category) {
		for _, s := range seq {
			if s.IsAnnotated() {
				res.Units++
				res.AnnotatedLength += s.Length
			}
		}
	}

	if expected == 0 {
		return res, fmt.Errorf("category %q: %w", category, ErrDegenerateCategory)
	}
	res.Agreement = 1 - observed/expected
	return res, nil
}

// sectionsByAnnotator returns the section sequences of a category indexed by annotator.
func (c *Calculator) sectionsByAnnotator(category string) [][]continuum.Section {
	res := make([][]continuum.Section, c.study.AnnotatorCount())
	for a := range res {
		res[a] = c.study.Sections(category, a)
	}
	return res
}
