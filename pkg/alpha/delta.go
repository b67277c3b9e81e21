package alpha

import (
	"fmt"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/continuum"
)

// Delta returns the squared disagreement δ(u,v) between two sections of the same category.
// it is non-zero only when
//   - both are annotated and overlap: the sum of squared begin and end offsets;
//   - one is annotated and lies completely inside the other, a gap: the unit length squared.
//
// δ is symmetric in u and v.
func Delta(u, v continuum.Section) (float64, error) {
	if u.Category != v.Category {
		return 0, fmt.Errorf("%w: %q vs %q", ErrCategoryMismatch, u.Category, v.Category)
	}

	offset := u.Begin - v.Begin
	switch {
	case u.IsAnnotated() && v.IsAnnotated():
		if -u.Length < offset && offset < v.Length {
			endOffset := u.End() - v.End()
			return float64(offset)*float64(offset) + float64(endOffset)*float64(endOffset), nil
		}
	case u.IsAnnotated() && !v.IsAnnotated():
		if 0 <= offset && offset <= v.Length-u.Length {
			return float64(u.Length) * float64(u.Length), nil
		}
	case !u.IsAnnotated() && v.IsAnnotated():
		if 0 <= -offset && -offset <= u.Length-v.Length {
			return float64(v.Length) * float64(v.Length), nil
		}
	}
	return 0, nil
}
