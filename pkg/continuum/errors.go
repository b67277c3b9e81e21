package continuum

import (
	"errors"
	"fmt"
)

// sentinel errors for model misuse, match with errors.Is.
var (
	// ErrOutOfOrderSection is returned when a section begins before the current coverage
	// end of its (category, annotator) pair.
	ErrOutOfOrderSection = errors.New("out of order section")
	// ErrBoundaryViolation is returned by Close when a section ends past the continuum end.
	ErrBoundaryViolation = errors.New("boundary violation")
	// ErrAlreadyClosed is returned by a second Close call.
	ErrAlreadyClosed = errors.New("model already closed")
	// ErrClosedModelMutation is returned by any mutation attempted after Close.
	ErrClosedModelMutation = errors.New("mutation of closed model")
	// ErrInvalidSection is returned for arguments outside the model contract.
	ErrInvalidSection = errors.New("invalid section")
)

// SectionError describes which section was rejected and why.
type SectionError struct {
	Category  string
	Annotator int
	Begin     int64
	Length    int64
	Reason    string
	Err       error // one of the sentinel errors above
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%v: section %s/%d [%d,%d): %s",
		e.Err, e.Category, e.Annotator, e.Begin, e.Begin+e.Length, e.Reason)
}

func (e *SectionError) Unwrap() error { return e.Err }
