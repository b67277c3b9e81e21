package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/alpha"
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

func krippendorff1995(t *testing.T) *continuum.Model {
	return newModel(t, 2, 150, 300, []unit{
		{"c", 0, 225, 70}, {"c", 0, 370, 30},
		{"c", 1, 220, 80}, {"c", 1, 355, 20}, {"c", 1, 400, 20},
		{"k", 0, 180, 60}, {"k", 0, 300, 50},
		{"k", 1, 180, 60}, {"k", 1, 300, 50},
	})
}

func noColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func TestCompute(t *testing.T) {
	t.Run("all categories", func(t *testing.T) {
		res, err := Compute("krippendorff1995", krippendorff1995(t), nil)
		require.NoError(t, err)

		assert.Equal(t, "krippendorff1995", res.Study)
		assert.Equal(t, 2, res.Annotators)
		assert.Equal(t, int64(150), res.Start)
		assert.Equal(t, int64(300), res.Length)
		require.Len(t, res.Categories, 2)

		c := res.Categories[0]
		assert.Equal(t, "c", c.Category)
		assert.Equal(t, 5, c.Units)
		assert.Equal(t, int64(220), c.AnnotatedLength)
		assert.InDelta(t, 0.0144, c.Observed, 0.0001)
		assert.InDelta(t, 0.0532, c.Expected, 0.0001)
		assert.InDelta(t, 0.7285, c.Alpha, 0.0001)
		assert.Empty(t, c.Error)

		k := res.Categories[1]
		assert.Equal(t, "k", k.Category)
		assert.Equal(t, 4, k.Units)
		assert.InDelta(t, 1.0, k.Alpha, 1e-12)

		assert.InDelta(t, 0.8587, res.Joint, 0.0001)
	})

	t.Run("category filter restricts joint", func(t *testing.T) {
		res, err := Compute("k1995", krippendorff1995(t), []string{"c", "c"})
		require.NoError(t, err)
		require.Len(t, res.Categories, 1)
		assert.InDelta(t, res.Categories[0].Alpha, res.Joint, 1e-12)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := Compute("k1995", krippendorff1995(t), []string{"x"})
		require.ErrorIs(t, err, ErrUnknownCategory)
		assert.Contains(t, err.Error(), `"x"`)
	})

	t.Run("degenerate category kept on its row", func(t *testing.T) {
		m := newModel(t, 2, 0, 1, []unit{
			{"a", 0, 0, 1}, {"a", 1, 0, 1},
			{"b", 0, 0, 1},
		})
		res, err := Compute("tiny", m, nil)
		require.NoError(t, err)
		require.Len(t, res.Categories, 2)
		assert.Contains(t, res.Categories[0].Error, "degenerate")
		assert.Equal(t, 2, res.Categories[0].Units)
		assert.Empty(t, res.Categories[1].Error)
	})

	t.Run("single annotator fails", func(t *testing.T) {
		m := newModel(t, 1, 0, 100, []unit{{"a", 0, 10, 20}})
		_, err := Compute("solo", m, nil)
		require.ErrorIs(t, err, alpha.ErrTooFewAnnotators)
		assert.Contains(t, err.Error(), "compute joint alpha")
	})

	t.Run("degenerate joint fails", func(t *testing.T) {
		m := newModel(t, 2, 0, 1, []unit{{"a", 0, 0, 1}, {"a", 1, 0, 1}})
		_, err := Compute("tiny", m, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, alpha.ErrDegenerateCategory))
	})
}

func TestText(t *testing.T) {
	noColor(t)
	res, err := Compute("krippendorff1995", krippendorff1995(t), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, res, nil, 4))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "study krippendorff1995: 2 annotators, continuum [150, 450)", lines[0])
	assert.Equal(t, strings.Fields("category units length observed expected alpha"), strings.Fields(lines[1]))
	assert.Equal(t, []string{"c", "5", "220", "0.0144", "0.0532", "0.7286"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"k", "4", "220", "0.0000", "0.0490", "1.0000"}, strings.Fields(lines[3]))
	assert.Equal(t, "joint alpha: 0.8587", lines[4])
}

func TestText_DegenerateRow(t *testing.T) {
	noColor(t)
	res := Result{Study: "s", Annotators: 2, Length: 10, Categories: []Row{
		{Category: "a", Units: 1234, AnnotatedLength: 12345, Error: "degenerate"},
	}, Joint: 0.5}

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, res, nil, 2))
	assert.Contains(t, buf.String(), "12,345")
	assert.Contains(t, buf.String(), "n/a")
	assert.Contains(t, buf.String(), "joint alpha: 0.50")
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestText_WriteError(t *testing.T) {
	err := Text(failWriter{}, Result{Study: "s"}, nil, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestMarkdown(t *testing.T) {
	res, err := Compute("krippendorff1995", krippendorff1995(t), nil)
	require.NoError(t, err)
	res.Categories = append(res.Categories, Row{Category: "x|y", Error: "category \"x|y\": degenerate"})

	md := Markdown(res, 3)
	assert.Contains(t, md, "## krippendorff1995")
	assert.Contains(t, md, "- annotators: 2")
	assert.Contains(t, md, "- continuum: [150, 450)")
	assert.Contains(t, md, "| c | 5 | 220 | 0.014 | 0.053 | 0.729 |")
	assert.Contains(t, md, "| k | 4 | 220 | 0.000 | 0.049 | 1.000 |")
	assert.Contains(t, md, `| x\|y | 0 | 0 | 0.000 | 0.000 | n/a |`)
	assert.Contains(t, md, "**joint alpha:** 0.859")
	assert.Contains(t, md, "- `x|y`: category")
}

func TestRenderMarkdown(t *testing.T) {
	t.Run("with color enabled renders markdown", func(t *testing.T) {
		content := "## Study\n\nSome **bold** text."
		result, err := RenderMarkdown(content, false, 80)
		require.NoError(t, err)
		assert.NotEqual(t, content, result)
		assert.Contains(t, result, "Study")
		assert.Contains(t, result, "bold")
	})

	t.Run("with noColor returns plain content", func(t *testing.T) {
		content := "## Study\n\nSome **bold** text."
		result, err := RenderMarkdown(content, true, 80)
		require.NoError(t, err)
		assert.Equal(t, content, result)
	})

	t.Run("renders tables", func(t *testing.T) {
		res, err := Compute("k1995", krippendorff1995(t), nil)
		require.NoError(t, err)
		result, err := RenderMarkdown(Markdown(res, 4), false, 0)
		require.NoError(t, err)
		assert.Contains(t, result, "0.7286")
		assert.Contains(t, result, "0.8587")
	})

	t.Run("handles empty content", func(t *testing.T) {
		result, err := RenderMarkdown("", false, 80)
		require.NoError(t, err)
		assert.Empty(t, strings.TrimSpace(result))
	})
}

func TestJSON(t *testing.T) {
	res, err := Compute("krippendorff1995", krippendorff1995(t), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, []Result{res}, 4))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "krippendorff1995", got[0]["study"])
	assert.InDelta(t, 150, got[0]["continuum_start"], 0)
	assert.InDelta(t, 0.8587, got[0]["joint_alpha"], 1e-12)

	cats, ok := got[0]["categories"].([]any)
	require.True(t, ok)
	require.Len(t, cats, 2)
	c, ok := cats[0].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.7286, c["alpha"], 1e-12)
	assert.NotContains(t, c, "error")

	// input is not modified by rounding
	assert.NotEqual(t, 0.7286, res.Categories[0].Alpha)
}
