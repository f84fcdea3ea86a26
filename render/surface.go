package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// Surface is the raster drawing capability the compositor consumes: a fixed
// square pixel grid with clear, image, shape, text, and serialize operations.
// Implementations are not safe for concurrent use; the session serializes
// access.
type Surface interface {
	// Size is the edge length in pixels, fixed for the surface lifetime.
	Size() int
	// Clear resets every pixel to transparent.
	Clear()
	// DrawImage scales img to fill the whole surface.
	DrawImage(img image.Image)
	// FillRoundedRect fills r with c, rounding the corners by radius.
	FillRoundedRect(r image.Rectangle, radius int, c color.Color)
	// DrawText draws text at origin with each font pixel scaled to a
	// scale x scale block.
	DrawText(text string, origin image.Point, scale int, c color.Color)
	// EncodePNG serializes the surface contents.
	EncodePNG() ([]byte, error)
}

// NewSurface creates the default in-memory Surface. Fails on a non-positive
// size; callers treat that as "feature unavailable".
func NewSurface(size int) (Surface, error) {
	if size <= 0 {
		return nil, fmt.Errorf("render: invalid surface size %d", size)
	}
	return &rasterSurface{
		img: image.NewRGBA(image.Rect(0, 0, size, size)),
	}, nil
}

type rasterSurface struct {
	img *image.RGBA
}

func (s *rasterSurface) Size() int {
	return s.img.Bounds().Dx()
}

func (s *rasterSurface) Clear() {
	draw.Draw(s.img, s.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (s *rasterSurface) DrawImage(img image.Image) {
	xdraw.ApproxBiLinear.Scale(s.img, s.img.Bounds(), img, img.Bounds(), xdraw.Over, nil)
}

func (s *rasterSurface) FillRoundedRect(r image.Rectangle, radius int, c color.Color) {
	r = r.Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	maxRadius := min(r.Dx(), r.Dy()) / 2
	if radius > maxRadius {
		radius = maxRadius
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if insideRounded(x, y, r, radius) {
				s.img.Set(x, y, c)
			}
		}
	}
}

// insideRounded tests pixel centers against the four corner arcs.
func insideRounded(x, y int, r image.Rectangle, radius int) bool {
	if radius <= 0 {
		return true
	}
	cx, cy := 0, 0
	switch {
	case x < r.Min.X+radius && y < r.Min.Y+radius:
		cx, cy = r.Min.X+radius, r.Min.Y+radius
	case x >= r.Max.X-radius && y < r.Min.Y+radius:
		cx, cy = r.Max.X-radius-1, r.Min.Y+radius
	case x < r.Min.X+radius && y >= r.Max.Y-radius:
		cx, cy = r.Min.X+radius, r.Max.Y-radius-1
	case x >= r.Max.X-radius && y >= r.Max.Y-radius:
		cx, cy = r.Max.X-radius-1, r.Max.Y-radius-1
	default:
		return true
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= radius*radius
}

func (s *rasterSurface) DrawText(text string, origin image.Point, scale int, c color.Color) {
	if scale < 1 {
		scale = 1
	}
	x := origin.X
	for _, r := range text {
		g := glyphFor(r)
		for row := 0; row < glyphHeight; row++ {
			for col := 0; col < glyphWidth; col++ {
				if g[row]&(1<<(glyphWidth-1-col)) == 0 {
					continue
				}
				px := x + col*scale
				py := origin.Y + row*scale
				fillBlock(s.img, px, py, scale, c)
			}
		}
		x += (glyphWidth + glyphSpacing) * scale
	}
}

func fillBlock(img *image.RGBA, x, y, size int, c color.Color) {
	r := image.Rect(x, y, x+size, y+size).Intersect(img.Bounds())
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			img.Set(px, py, c)
		}
	}
}

func (s *rasterSurface) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
