// Package colors parses widget color attributes and derives highlight colors.
package colors

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidColor indicates a color string that could not be parsed.
var ErrInvalidColor = errors.New("colors: invalid color")

// Transparent is fully transparent black.
var Transparent = color.NRGBA{}

// named mirrors the color names accepted by the Android color parser.
var named = map[string]color.NRGBA{
	"black":       {A: 0xff},
	"darkgray":    {R: 0x44, G: 0x44, B: 0x44, A: 0xff},
	"darkgrey":    {R: 0x44, G: 0x44, B: 0x44, A: 0xff},
	"gray":        {R: 0x88, G: 0x88, B: 0x88, A: 0xff},
	"grey":        {R: 0x88, G: 0x88, B: 0x88, A: 0xff},
	"lightgray":   {R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff},
	"lightgrey":   {R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff},
	"white":       {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"red":         {R: 0xff, A: 0xff},
	"green":       {G: 0xff, A: 0xff},
	"blue":        {B: 0xff, A: 0xff},
	"yellow":      {R: 0xff, G: 0xff, A: 0xff},
	"cyan":        {G: 0xff, B: 0xff, A: 0xff},
	"magenta":     {R: 0xff, B: 0xff, A: 0xff},
	"aqua":        {G: 0xff, B: 0xff, A: 0xff},
	"fuchsia":     {R: 0xff, B: 0xff, A: 0xff},
	"lime":        {G: 0xff, A: 0xff},
	"maroon":      {R: 0x80, A: 0xff},
	"navy":        {B: 0x80, A: 0xff},
	"olive":       {R: 0x80, G: 0x80, A: 0xff},
	"purple":      {R: 0x80, B: 0x80, A: 0xff},
	"silver":      {R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
	"teal":        {G: 0x80, B: 0x80, A: 0xff},
	"transparent": {},
}

// Parse parses "#RRGGBB", "#AARRGGBB" or a color name.
func Parse(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		if c, ok := named[strings.ToLower(s)]; ok {
			return c, nil
		}
		return Transparent, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	hex := s[1:]
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Transparent, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	switch len(hex) {
	case 6:
		v |= 0xff000000
	case 8:
	default:
		return Transparent, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{
		A: uint8(v >> 24),
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// Hex formats c as "#AARRGGBB".
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

// SplitList splits a pipe-delimited color list. Lists without any "#"
// are ignored and yield nil.
func SplitList(s string) []string {
	if !strings.Contains(s, "#") {
		return nil
	}
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Palette parses n colors from list, recycling the list when it is shorter
// than n. Entries that fail to parse are replaced by fallback and logged.
// An empty list yields nil.
func Palette(list []string, n int, fallback color.NRGBA, logger *zap.Logger) []color.NRGBA {
	if len(list) == 0 || n <= 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	palette := make([]color.NRGBA, n)
	for i := range palette {
		raw := list[i%len(list)]
		c, err := Parse(raw)
		if err != nil {
			logger.Warn("error creating section color",
				zap.Int("section", i),
				zap.String("color", raw),
				zap.Error(err),
			)
			c = fallback
		}
		palette[i] = c
	}
	return palette
}

// Highlight returns c with its alpha adjusted for a highlighted section:
// alpha above 150 drops by 150, anything else rises by 100, capped at 255.
func Highlight(c color.NRGBA) color.NRGBA {
	alpha := int(c.A)
	if alpha > 150 {
		alpha -= 150
	} else {
		alpha += 100
	}
	if alpha > 255 {
		alpha = 255
	}
	c.A = uint8(alpha)
	return c
}
