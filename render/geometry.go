// Package render composites a badge over a base favicon image on a small
// raster surface and serializes the result to a PNG data URI.
//
// Every measurement is an integer multiple of a single ratio derived from the
// device pixel ratio, so the badge stays crisp on high-density displays
// without separate asset variants.
package render

import (
	"image"
	"math"
)

// BaseSize is the logical favicon edge in pixels per ratio unit.
const BaseSize = 16

// Ratio converts a device pixel ratio to the integer scaling unit:
// ceil(dpr), minimum 1.
func Ratio(dpr float64) int {
	r := int(math.Ceil(dpr))
	if r < 1 {
		r = 1
	}
	return r
}

// CanvasSize is the surface edge for a given ratio.
func CanvasSize(ratio int) int {
	return BaseSize * ratio
}

// Layout places the badge shape and its text on the canvas.
type Layout struct {
	Badge      image.Rectangle
	Radius     int
	TextOrigin image.Point
}

// BadgeLayout computes the bottom-right anchored badge for a text of the
// given rune length. Width grows 3 ratio units per extra rune, capped at the
// canvas edge; height and radius are fixed multiples of the ratio.
func BadgeLayout(textLen, ratio int) Layout {
	canvas := CanvasSize(ratio)
	if textLen < 1 {
		textLen = 1
	}

	w := (8 + 3*(textLen-1)) * ratio
	if w > canvas {
		w = canvas
	}
	h := 9 * ratio

	badge := image.Rect(canvas-w, canvas-h, canvas, canvas)

	// Glyphs are 3 units wide with 1 unit spacing, drawn top-aligned 2 units
	// below the badge top and centered horizontally.
	textW := (3*textLen + (textLen - 1)) * ratio
	origin := image.Point{
		X: badge.Min.X + (w-textW)/2,
		Y: badge.Min.Y + 2*ratio,
	}

	return Layout{Badge: badge, Radius: 2 * ratio, TextOrigin: origin}
}
