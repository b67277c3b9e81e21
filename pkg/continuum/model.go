// Package continuum provides the section model of a unitizing study: per annotator and
// category, an ordered sequence of annotated sections and synthesized gaps that tiles a
// bounded continuum once the model is closed.
package continuum

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// pairKey identifies the section sequence of one annotator within one category.
type pairKey struct {
	category  string
	annotator int
}

// Model holds the sections of a unitizing study.
// the model is open while sections are added and becomes read-only after Close.
// it is not safe for concurrent mutation; a closed model may be read concurrently.
type Model struct {
	id         uuid.UUID
	annotators int
	start      int64
	length     int64
	closed     bool

	sections   map[pairKey][]Section
	categories map[string]struct{}
}

// Option configures a Model.
type Option func(m *Model)

// WithStart sets the first offset of the continuum.
func WithStart(start int64) Option {
	return func(m *Model) { m.start = start }
}

// WithLength sets the length of the continuum.
func WithLength(length int64) Option {
	return func(m *Model) { m.length = length }
}

// New creates an open model for the given number of annotators.
func New(annotators int, opts ...Option) (*Model, error) {
	if annotators < 1 {
		return nil, fmt.Errorf("%w: annotator count must be positive, got %d", ErrInvalidSection, annotators)
	}
	m := &Model{
		id:         uuid.New(),
		annotators: annotators,
		sections:   make(map[pairKey][]Section),
		categories: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.length < 0 {
		return nil, fmt.Errorf("%w: continuum length must be non-negative, got %d", ErrInvalidSection, m.length)
	}
	return m, nil
}

// ID returns the identifier shared by all sections of this model.
func (m *Model) ID() uuid.UUID { return m.id }

// AnnotatorCount returns the number of annotators.
func (m *Model) AnnotatorCount() int { return m.annotators }

// ContinuumStart returns the first offset of the continuum.
func (m *Model) ContinuumStart() int64 { return m.start }

// ContinuumLength returns the length of the continuum.
func (m *Model) ContinuumLength() int64 { return m.length }

// ContinuumEnd returns the exclusive end offset of the continuum.
func (m *Model) ContinuumEnd() int64 { return m.start + m.length }

// Closed reports whether Close has completed successfully.
func (m *Model) Closed() bool { return m.closed }

// SetContinuumStart changes the continuum start. it is rejected once sections exist,
// because leading gaps were already synthesized against the previous start.
func (m *Model) SetContinuumStart(start int64) error {
	if m.closed {
		return fmt.Errorf("set continuum start: %w", ErrClosedModelMutation)
	}
	if len(m.sections) > 0 {
		return fmt.Errorf("set continuum start: %w: sections already added", ErrInvalidSection)
	}
	m.start = start
	return nil
}

// SetContinuumLength changes the continuum length. it may be called until Close.
func (m *Model) SetContinuumLength(length int64) error {
	if m.closed {
		return fmt.Errorf("set continuum length: %w", ErrClosedModelMutation)
	}
	if length < 0 {
		return fmt.Errorf("set continuum length: %w: must be non-negative, got %d", ErrInvalidSection, length)
	}
	m.length = length
	return nil
}

// AddSection appends an annotated section for the given category and annotator.
// sections of a (category, annotator) pair must be added in order of their begin offset;
// the space between the previous coverage end and begin is filled with a gap.
func (m *Model) AddSection(category string, annotator int, begin, length int64) error {
	fail := func(reason string, err error) error {
		return &SectionError{Category: category, Annotator: annotator, Begin: begin, Length: length, Reason: reason, Err: err}
	}

	if m.closed {
		return fail("model is closed", ErrClosedModelMutation)
	}
	if annotator < 0 || annotator >= m.annotators {
		return fail(fmt.Sprintf("annotator must be in [0,%d)", m.annotators), ErrInvalidSection)
	}
	if length < 1 {
		return fail("length must be at least 1", ErrInvalidSection)
	}

	key := pairKey{category: category, annotator: annotator}
	seq := m.sections[key]
	coverageEnd := m.start
	if len(seq) > 0 {
		coverageEnd = seq[len(seq)-1].End()
	}
	if begin < coverageEnd {
		return fail(fmt.Sprintf("begins before coverage end %d", coverageEnd), ErrOutOfOrderSection)
	}

	if begin > coverageEnd {
		seq = append(seq, m.section(key, coverageEnd, begin-coverageEnd, Gap))
	}
	m.sections[key] = append(seq, m.section(key, begin, length, Annotated))
	m.categories[category] = struct{}{}
	return nil
}

// Close finalizes the model: trailing gaps are appended to every sequence that ends
// short of the continuum end, and annotators without any section in a known category
// receive one gap spanning the whole continuum. the model is left unchanged on error.
func (m *Model) Close() error {
	if m.closed {
		return ErrAlreadyClosed
	}

	end := m.ContinuumEnd()
	categories := m.Categories()

	// check all sequences first, nothing is mutated when a boundary is violated
	for _, cat := range categories {
		for a := range m.annotators {
			seq := m.sections[pairKey{category: cat, annotator: a}]
			if len(seq) == 0 {
				continue
			}
			last := seq[len(seq)-1]
			if last.End() > end {
				return &SectionError{Category: cat, Annotator: a, Begin: last.Begin, Length: last.Length,
					Reason: fmt.Sprintf("ends past continuum end %d", end), Err: ErrBoundaryViolation}
			}
		}
	}

	for _, cat := range categories {
		for a := range m.annotators {
			key := pairKey{category: cat, annotator: a}
			seq := m.sections[key]
			coverageEnd := m.start
			if len(seq) > 0 {
				coverageEnd = seq[len(seq)-1].End()
			}
			if coverageEnd < end {
				seq = append(seq, m.section(key, coverageEnd, end-coverageEnd, Gap))
			}
			m.sections[key] = seq
		}
	}

	m.closed = true
	return nil
}

// Sections returns a copy of the section sequence of one annotator in one category.
// before Close the sequence is a partial prefix without the trailing gap.
func (m *Model) Sections(category string, annotator int) []Section {
	return slices.Clone(m.sections[pairKey{category: category, annotator: annotator}])
}

// Units returns all annotated sections of a category, ordered by annotator then begin.
func (m *Model) Units(category string) []Section {
	var res []Section
	for a := range m.annotators {
		for _, s := range m.sections[pairKey{category: category, annotator: a}] {
			if s.IsAnnotated() {
				res = append(res, s)
			}
		}
	}
	return res
}

// AnnotatedLength returns the summed length of the annotated sections of one annotator.
func (m *Model) AnnotatedLength(category string, annotator int) int64 {
	var total int64
	for _, s := range m.sections[pairKey{category: category, annotator: annotator}] {
		if s.IsAnnotated() {
			total += s.Length
		}
	}
	return total
}

// Categories returns all categories seen so far, sorted.
func (m *Model) Categories() []string {
	res := make([]string, 0, len(m.categories))
	for c := range m.categories {
		res = append(res, c)
	}
	slices.Sort(res)
	return res
}

func (m *Model) section(key pairKey, begin, length int64, kind Kind) Section {
	return Section{
		Continuum: m.id,
		Category:  key.category,
		Annotator: key.annotator,
		Begin:     begin,
		Length:    length,
		Kind:      kind,
	}
}
