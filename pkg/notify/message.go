package notify

import (
	"encoding/json"
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/report"
)

// notice is a classified outcome ready to be rendered.
type notice struct {
	outcome      Outcome
	status       Status
	low          []string // categories with alpha below threshold
	threshold    float64
	thresholdSet bool
	host         string
	precision    int
}

func (n notice) headline() string {
	name := n.outcome.File
	if r := n.outcome.Report; r != nil && r.Study != "" {
		name = r.Study
	}
	switch n.status {
	case StatusFailed:
		return fmt.Sprintf("ualpha failed on %s for %s", n.host, name)
	case StatusLowAgreement:
		return fmt.Sprintf("ualpha: %s agreement below %s on %s", name, n.format(n.threshold), n.host)
	case StatusDegenerate:
		return fmt.Sprintf("ualpha: %s has degenerate categories on %s", name, n.host)
	default:
		return fmt.Sprintf("ualpha: %s agreement computed on %s", name, n.host)
	}
}

func (n notice) format(v float64) string {
	return strconv.FormatFloat(v, 'f', n.precision, 64)
}

// renderText lays out the outcome as a short plain text message, one category per line.
func renderText(n notice) (string, error) {
	var b strings.Builder
	b.WriteString(n.headline())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "file:       %s\n", n.outcome.File)
	fmt.Fprintf(&b, "duration:   %s\n", n.outcome.Duration.Round(time.Millisecond))

	if r := n.outcome.Report; r != nil {
		fmt.Fprintf(&b, "annotators: %d\n", r.Annotators)
		fmt.Fprintf(&b, "continuum:  [%d, %d)\n", r.Start, r.Start+r.Length)
		b.WriteString("\n")
		for _, row := range r.Categories {
			switch {
			case row.Error != "":
				fmt.Fprintf(&b, "alpha[%s]: n/a (%s)\n", row.Category, row.Error)
			case slices.Contains(n.low, row.Category):
				fmt.Fprintf(&b, "alpha[%s]: %s (low)\n", row.Category, n.format(row.Alpha))
			default:
				fmt.Fprintf(&b, "alpha[%s]: %s\n", row.Category, n.format(row.Alpha))
			}
		}
		fmt.Fprintf(&b, "joint:      %s\n", n.format(r.Joint))
	}

	if n.outcome.Err != nil {
		fmt.Fprintf(&b, "error:      %v\n", n.outcome.Err)
	}
	return b.String(), nil
}

// renderHTML is renderText escaped for channels sending in HTML parse mode.
func renderHTML(n notice) (string, error) {
	text, err := renderText(n)
	return html.EscapeString(text), err
}

// payload is the json document piped to the custom script.
type payload struct {
	Status     Status         `json:"status"`
	Host       string         `json:"host"`
	File       string         `json:"file"`
	DurationMs int64          `json:"duration_ms"`
	Threshold  *float64       `json:"threshold,omitempty"`
	Low        []string       `json:"low_categories,omitempty"`
	Error      string         `json:"error,omitempty"`
	Report     *report.Result `json:"report,omitempty"`
}

// renderJSON encodes the outcome for scripts. alpha values keep full precision.
func renderJSON(n notice) (string, error) {
	p := payload{
		Status:     n.status,
		Host:       n.host,
		File:       n.outcome.File,
		DurationMs: n.outcome.Duration.Milliseconds(),
		Low:        n.low,
		Report:     n.outcome.Report,
	}
	if n.thresholdSet {
		p.Threshold = &n.threshold
	}
	if n.outcome.Err != nil {
		p.Error = n.outcome.Err.Error()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}
