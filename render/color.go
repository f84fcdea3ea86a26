package render

import "image/color"

// ParseColor parses #rgb, #rrggbb, and #rrggbbaa color strings. Returns
// false on anything else; callers fall back to their defaults instead of
// failing the render.
func ParseColor(s string) (color.RGBA, bool) {
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, false
	}
	hex := s[1:]

	nibble := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}
	pair := func(i int) (uint8, bool) {
		hi, ok1 := nibble(hex[i])
		lo, ok2 := nibble(hex[i+1])
		return hi<<4 | lo, ok1 && ok2
	}

	switch len(hex) {
	case 3:
		var out [3]uint8
		for i := 0; i < 3; i++ {
			n, ok := nibble(hex[i])
			if !ok {
				return color.RGBA{}, false
			}
			out[i] = n<<4 | n
		}
		return color.RGBA{R: out[0], G: out[1], B: out[2], A: 0xff}, true
	case 6, 8:
		var out [4]uint8
		out[3] = 0xff
		for i := 0; i*2 < len(hex); i++ {
			n, ok := pair(i * 2)
			if !ok {
				return color.RGBA{}, false
			}
			out[i] = n
		}
		return color.RGBA{R: out[0], G: out[1], B: out[2], A: out[3]}, true
	}
	return color.RGBA{}, false
}
