package progress

import (
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/config"
)

// Colors holds the console colors for log lines and reports.
type Colors struct {
	category  *color.Color
	joint     *color.Color
	warn      *color.Color
	err       *color.Color
	timestamp *color.Color
	info      *color.Color
}

// NewColors creates Colors from "r,g,b" triples of the configuration.
// an empty or malformed triple falls back to the default color for that slot.
func NewColors(cfg config.ColorConfig) *Colors {
	def := DefaultColors()
	return &Colors{
		category:  parseRGB(cfg.Category, def.category),
		joint:     parseRGB(cfg.Joint, def.joint),
		warn:      parseRGB(cfg.Warn, def.warn),
		err:       parseRGB(cfg.Error, def.err),
		timestamp: parseRGB(cfg.Timestamp, def.timestamp),
		info:      parseRGB(cfg.Info, def.info),
	}
}

// DefaultColors returns the basic ANSI palette used when no configuration is given.
func DefaultColors() *Colors {
	return &Colors{
		category:  color.New(color.FgGreen),
		joint:     color.New(color.FgCyan),
		warn:      color.New(color.FgYellow),
		err:       color.New(color.FgRed),
		timestamp: color.New(color.FgWhite),
		info:      color.New(color.Reset),
	}
}

// Category returns the color for per-category rows.
func (c *Colors) Category() *color.Color { return c.category }

// Joint returns the color for the joint agreement line.
func (c *Colors) Joint() *color.Color { return c.joint }

// Warn returns the warning color.
func (c *Colors) Warn() *color.Color { return c.warn }

// Error returns the error color.
func (c *Colors) Error() *color.Color { return c.err }

// Timestamp returns the timestamp color.
func (c *Colors) Timestamp() *color.Color { return c.timestamp }

// Info returns the color for informational messages.
func (c *Colors) Info() *color.Color { return c.info }

func parseRGB(s string, fallback *color.Color) *color.Color {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return fallback
	}
	var rgb [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return fallback
		}
		rgb[i] = v
	}
	return color.RGB(rgb[0], rgb[1], rgb[2])
}
