package render

import (
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"strconv"
)

// PNGDataURIPrefix prefixes every serialized surface.
const PNGDataURIPrefix = "data:image/png;base64,"

// CountText maps a count to its badge text: nothing for 0 (plain icon),
// the decimal digits for 1-99, "99+" beyond. Negative counts are not
// countable; the caller renders the indicator glyph instead.
func CountText(n int) string {
	switch {
	case n <= 0:
		return ""
	case n < 100:
		return strconv.Itoa(n)
	default:
		return "99+"
	}
}

// Style is the resolved badge appearance. Both colors are non-nil.
type Style struct {
	Background color.Color
	Foreground color.Color
}

// Compositor draws a badge over a base icon on a fixed surface. The surface
// is created once and reused across renders; Compositor methods are not safe
// for concurrent use.
type Compositor struct {
	surface Surface
	ratio   int
}

// NewCompositor wraps a surface sized CanvasSize(ratio).
func NewCompositor(surface Surface, ratio int) (*Compositor, error) {
	if ratio < 1 {
		return nil, fmt.Errorf("render: invalid ratio %d", ratio)
	}
	if got, want := surface.Size(), CanvasSize(ratio); got != want {
		return nil, fmt.Errorf("render: surface size %d, want %d", got, want)
	}
	return &Compositor{surface: surface, ratio: ratio}, nil
}

// Ratio is the integer scaling unit the compositor draws with.
func (c *Compositor) Ratio() int {
	return c.ratio
}

// Compose clears the surface, draws base scaled to fill it, overlays the
// badge unless text is empty, and returns the result as a PNG data URI.
func (c *Compositor) Compose(base image.Image, text string, style Style) (string, error) {
	c.surface.Clear()
	c.surface.DrawImage(base)

	if text != "" {
		runes := []rune(text)
		layout := BadgeLayout(len(runes), c.ratio)
		c.surface.FillRoundedRect(layout.Badge, layout.Radius, style.Background)
		c.surface.DrawText(text, layout.TextOrigin, c.ratio, style.Foreground)
	}

	data, err := c.surface.EncodePNG()
	if err != nil {
		return "", err
	}
	return PNGDataURIPrefix + base64.StdEncoding.EncodeToString(data), nil
}
