package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// colorSlots binds each color_* key to its ColorConfig field.
var colorSlots = []struct {
	key   string
	field func(c *ColorConfig) *string
}{
	{"color_category", func(c *ColorConfig) *string { return &c.Category }},
	{"color_joint", func(c *ColorConfig) *string { return &c.Joint }},
	{"color_warn", func(c *ColorConfig) *string { return &c.Warn }},
	{"color_error", func(c *ColorConfig) *string { return &c.Error }},
	{"color_timestamp", func(c *ColorConfig) *string { return &c.Timestamp }},
	{"color_info", func(c *ColorConfig) *string { return &c.Info }},
}

// loadColors resolves colors from the embedded defaults and then each config file in
// order, a later file overriding the keys it sets. missing or empty paths are skipped.
func loadColors(embedFS embed.FS, paths ...string) (ColorConfig, error) {
	var res ColorConfig

	data, err := embedFS.ReadFile("defaults/config")
	if err != nil {
		return ColorConfig{}, fmt.Errorf("read embedded defaults: %w", err)
	}
	if err := applyColors(&res, data); err != nil {
		return ColorConfig{}, fmt.Errorf("embedded defaults: %w", err)
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p) //nolint:gosec // path is constructed internally
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return ColorConfig{}, fmt.Errorf("read config %s: %w", p, err)
		}
		if err := applyColors(&res, data); err != nil {
			return ColorConfig{}, fmt.Errorf("%s: %w", p, err)
		}
	}
	return res, nil
}

// applyColors overwrites the slots of c set by non-empty color_* keys in data.
func applyColors(c *ColorConfig, data []byte) error {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	section := f.Section("")
	for _, slot := range colorSlots {
		v := strings.TrimSpace(section.Key(slot.key).String())
		if v == "" {
			continue
		}
		rgb, err := hexToRGB(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", slot.key, err)
		}
		*slot.field(c) = rgb
	}
	return nil
}

// hexToRGB converts "#rrggbb" to the "r,g,b" form consumed by the console palette.
func hexToRGB(hex string) (string, error) {
	digits, ok := strings.CutPrefix(hex, "#")
	if !ok || len(digits) != 6 {
		return "", fmt.Errorf("want #rrggbb, got %q", hex)
	}
	n, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return "", fmt.Errorf("want #rrggbb, got %q", hex)
	}
	return fmt.Sprintf("%d,%d,%d", n>>16, n>>8&0xff, n&0xff), nil
}
