package alpha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/continuum"
)

type unit struct {
	category  string
	annotator int
	begin     int64
	length    int64
}

func newModel(t *testing.T, annotators int, start, length int64, units []unit) *continuum.Model {
	t.Helper()
	m, err := continuum.New(annotators, continuum.WithStart(start), continuum.WithLength(length))
	require.NoError(t, err)
	for _, u := range units {
		require.NoError(t, m.AddSection(u.category, u.annotator, u.begin, u.length))
	}
	require.NoError(t, m.Close())
	return m
}

// krippendorff1995 is the two-annotator study from Krippendorff's unitizing paper.
func krippendorff1995(t *testing.T) *continuum.Model {
	return newModel(t, 2, 150, 300, []unit{
		{"c", 0, 225, 70}, {"c", 0, 370, 30},
		{"c", 1, 220, 80}, {"c", 1, 355, 20}, {"c", 1, 400, 20},
		{"k", 0, 180, 60}, {"k", 0, 300, 50},
		{"k", 1, 180, 60}, {"k", 1, 300, 50},
	})
}

func TestCalculator_Krippendorff1995(t *testing.T) {
	calc := New(krippendorff1995(t))

	t.Run("category c", func(t *testing.T) {
		do, err := calc.ObservedDisagreement("c")
		require.NoError(t, err)
		assert.InDelta(t, 0.0144, do, 0.0001)

		de, err := calc.ExpectedDisagreement("c")
		require.NoError(t, err)
		assert.InDelta(t, 0.0532, de, 0.0001)

		a, err := calc.CategoryAgreement("c")
		require.NoError(t, err)
		assert.InDelta(t, 0.7285, a, 0.0001)
	})

	t.Run("category k with identical annotations", func(t *testing.T) {
		do, err := calc.ObservedDisagreement("k")
		require.NoError(t, err)
		assert.Zero(t, do)

		de, err := calc.ExpectedDisagreement("k")
		require.NoError(t, err)
		assert.Positive(t, de)

		a, err := calc.CategoryAgreement("k")
		require.NoError(t, err)
		assert.Equal(t, 1.0, a) //nolint:testifylint // exact by construction
	})

	t.Run("joint pools categories", func(t *testing.T) {
		joint, err := calc.JointAgreement()
		require.NoError(t, err)
		assert.InDelta(t, 0.8587, joint, 0.0001)

		ac, err := calc.CategoryAgreement("c")
		require.NoError(t, err)
		ak, err := calc.CategoryAgreement("k")
		require.NoError(t, err)
		assert.Greater(t, (ac+ak)/2-joint, 0.001, "joint alpha must differ from the mean of category alphas")
	})

	t.Run("summary", func(t *testing.T) {
		res, err := calc.Summary("c")
		require.NoError(t, err)
		assert.Equal(t, "c", res.Category)
		assert.Equal(t, 5, res.Units)
		assert.Equal(t, int64(220), res.AnnotatedLength)
		assert.InDelta(t, 0.0144, res.Observed, 0.0001)
		assert.InDelta(t, 0.0532, res.Expected, 0.0001)
		assert.InDelta(t, 0.7285, res.Agreement, 0.0001)
	})
}

func TestCalculator_ThreeAnnotators(t *testing.T) {
	m := newModel(t, 3, 0, 50, []unit{
		{"c", 0, 0, 10}, {"c", 0, 20, 10},
		{"c", 1, 0, 10}, {"c", 1, 22, 8},
		{"c", 2, 5, 10},
	})
	calc := New(m)

	do, err := calc.ObservedDisagreement("c")
	require.NoError(t, err)
	assert.InDelta(t, 0.035733, do, 1e-6)

	de, err := calc.ExpectedDisagreement("c")
	require.NoError(t, err)
	assert.InDelta(t, 0.063842, de, 1e-6)

	a, err := calc.CategoryAgreement("c")
	require.NoError(t, err)
	assert.InDelta(t, 0.440289, a, 1e-6)
}

func TestCalculator_IdenticalAnnotations(t *testing.T) {
	var units []unit
	for a := range 4 {
		units = append(units, unit{"x", a, 10, 5}, unit{"x", a, 40, 12}, unit{"x", a, 80, 1})
	}
	calc := New(newModel(t, 4, 0, 100, units))

	do, err := calc.ObservedDisagreement("x")
	require.NoError(t, err)
	assert.Zero(t, do)

	a, err := calc.CategoryAgreement("x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, a) //nolint:testifylint // exact by construction
}

func TestCalculator_NotClosed(t *testing.T) {
	m, err := continuum.New(2, continuum.WithLength(10))
	require.NoError(t, err)
	require.NoError(t, m.AddSection("c", 0, 0, 5))
	calc := New(m)

	_, err = calc.ObservedDisagreement("c")
	require.ErrorIs(t, err, ErrNotClosed)
	_, err = calc.ExpectedDisagreement("c")
	require.ErrorIs(t, err, ErrNotClosed)
	_, err = calc.CategoryAgreement("c")
	require.ErrorIs(t, err, ErrNotClosed)
	_, err = calc.JointAgreement()
	require.ErrorIs(t, err, ErrNotClosed)
	_, err = calc.Summary("c")
	require.ErrorIs(t, err, ErrNotClosed)

	// closing later makes the same calculator usable
	require.NoError(t, m.Close())
	_, err = calc.ObservedDisagreement("c")
	require.NoError(t, err)
}

func TestCalculator_Degenerate(t *testing.T) {
	// both annotators cover the single-offset continuum: only one placement exists
	m := newModel(t, 2, 0, 1, []unit{{"c", 0, 0, 1}, {"c", 1, 0, 1}})
	calc := New(m)

	de, err := calc.ExpectedDisagreement("c")
	require.NoError(t, err)
	assert.Zero(t, de)

	_, err = calc.CategoryAgreement("c")
	require.ErrorIs(t, err, ErrDegenerateCategory)
	assert.Contains(t, err.Error(), `"c"`)

	_, err = calc.JointAgreement()
	require.ErrorIs(t, err, ErrDegenerateCategory)

	res, err := calc.Summary("c")
	require.ErrorIs(t, err, ErrDegenerateCategory)
	assert.Equal(t, 2, res.Units)
}

func TestCalculator_SingleAnnotator(t *testing.T) {
	// expected disagreement is positive, observed would be 0/0
	m := newModel(t, 1, 0, 100, []unit{{"c", 0, 10, 20}, {"c", 0, 50, 30}})
	calc := New(m)

	de, err := calc.ExpectedDisagreement("c")
	require.NoError(t, err)
	assert.Positive(t, de)

	_, err = calc.ObservedDisagreement("c")
	require.ErrorIs(t, err, ErrTooFewAnnotators)
	require.ErrorIs(t, err, ErrDegenerateCategory)

	a, err := calc.CategoryAgreement("c")
	require.ErrorIs(t, err, ErrTooFewAnnotators)
	assert.Zero(t, a, "no perfect agreement reported")

	_, err = calc.Summary("c")
	require.ErrorIs(t, err, ErrTooFewAnnotators)

	_, err = calc.JointAgreement()
	require.ErrorIs(t, err, ErrTooFewAnnotators)
	assert.Contains(t, err.Error(), "at least two annotators")

	_, err = calc.JointAgreementOver(nil)
	require.ErrorIs(t, err, ErrTooFewAnnotators)
}

func TestCalculator_NoCategories(t *testing.T) {
	m := newModel(t, 2, 0, 10, nil)
	_, err := New(m).JointAgreement()
	require.ErrorIs(t, err, ErrDegenerateCategory)
}

func TestCalculator_UnknownCategory(t *testing.T) {
	calc := New(krippendorff1995(t))

	do, err := calc.ObservedDisagreement("missing")
	require.NoError(t, err)
	assert.Zero(t, do)

	_, err = calc.CategoryAgreement("missing")
	require.ErrorIs(t, err, ErrDegenerateCategory)
}

func TestCalculator_SharedBetweenGoroutines(t *testing.T) {
	calc := New(krippendorff1995(t))
	want, err := calc.JointAgreement()
	require.NoError(t, err)

	results := make(chan float64, 8)
	for range 8 {
		go func() {
			v, jErr := calc.JointAgreement()
			if jErr != nil {
				results <- -1
				return
			}
			results <- v
		}()
	}
	for range 8 {
		assert.InDelta(t, want, <-results, 1e-12)
	}
}

func TestCalculator_JointAgreementOver(t *testing.T) {
	calc := New(krippendorff1995(t))

	ac, err := calc.CategoryAgreement("c")
	require.NoError(t, err)

	single, err := calc.JointAgreementOver([]string{"c"})
	require.NoError(t, err)
	assert.InDelta(t, ac, single, 1e-12, "a single category pools to its own alpha")

	all, err := calc.JointAgreementOver([]string{"c", "k"})
	require.NoError(t, err)
	joint, err := calc.JointAgreement()
	require.NoError(t, err)
	assert.InDelta(t, joint, all, 1e-12)

	_, err = calc.JointAgreementOver(nil)
	require.ErrorIs(t, err, ErrDegenerateCategory)
}
