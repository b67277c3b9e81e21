package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown formats the result as a markdown section with a table of categories.
func Markdown(r Result, precision int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", r.Study)
	fmt.Fprintf(&b, "- annotators: %d\n", r.Annotators)
	fmt.Fprintf(&b, "- continuum: [%d, %d)\n\n", r.Start, r.Start+r.Length)

	b.WriteString("| category | units | annotated length | observed | expected | alpha |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, row := range r.Categories {
		fmt.Fprintf(&b, "| %s | %d | %d | %s | %s | %s |\n", escapeCell(row.Category), row.Units,
			row.AnnotatedLength, formatFloat(row.Observed, precision), formatFloat(row.Expected, precision),
			alphaCell(row, precision))
	}

	fmt.Fprintf(&b, "\n**joint alpha:** %s\n", formatFloat(r.Joint, precision))

	var notes []string
	for _, row := range r.Categories {
		if row.Error != "" {
			notes = append(notes, fmt.Sprintf("- `%s`: %s", row.Category, row.Error))
		}
	}
	if len(notes) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(notes, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMarkdown renders markdown content for terminal display.
// if noColor is true, returns the content unchanged.
// otherwise, uses glamour to render with auto-detected style, wrapped at width.
func RenderMarkdown(content string, noColor bool, width int) (string, error) {
	if noColor {
		return content, nil
	}
	if width <= 0 {
		width = 80
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	result, err := renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return result, nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
