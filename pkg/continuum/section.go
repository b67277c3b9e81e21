package continuum

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind marks a section as an annotated unit or as the uncoded remainder between units.
type Kind int

const (
	// Gap is the uncoded part of the continuum (v=0). gaps are synthesized by the model.
	Gap Kind = iota
	// Annotated is a unit actually coded by an annotator (v=1).
	Annotated
)

// Value returns the numeric flag used in the alpha formulas: 1 for annotated, 0 for gaps.
func (k Kind) Value() int {
	if k == Annotated {
		return 1
	}
	return 0
}

// String returns the kind name.
func (k Kind) String() string {
	if k == Annotated {
		return "annotated"
	}
	return "gap"
}

// Section is an immutable run of the continuum owned by one annotator and one category.
// it is a plain value: two sections are equal when all fields, including the owning
// continuum identifier, are equal.
type Section struct {
	Continuum uuid.UUID
	Category  string
	Annotator int
	Begin     int64
	Length    int64
	Kind      Kind
}

// End returns the exclusive end offset of the section.
func (s Section) End() int64 { return s.Begin + s.Length }

// IsAnnotated reports whether the section is a coded unit.
func (s Section) IsAnnotated() bool { return s.Kind == Annotated }

// String returns a compact representation, e.g. "c/0 [225,295) annotated".
func (s Section) String() string {
	return fmt.Sprintf("%s/%d [%d,%d) %s", s.Category, s.Annotator, s.Begin, s.End(), s.Kind)
}
