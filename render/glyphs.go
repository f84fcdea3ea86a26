package render

// Badge text uses a built-in 3x5 bitmap font: at favicon scale a real font
// face is blurrier than hand-placed pixels. Each glyph row is a 3-bit mask,
// bit 2 leftmost.

const (
	glyphWidth   = 3
	glyphHeight  = 5
	glyphSpacing = 1
)

var glyphs = map[rune][glyphHeight]uint8{
	'0': {0b111, 0b101, 0b101, 0b101, 0b111},
	'1': {0b010, 0b110, 0b010, 0b010, 0b111},
	'2': {0b111, 0b001, 0b111, 0b100, 0b111},
	'3': {0b111, 0b001, 0b111, 0b001, 0b111},
	'4': {0b101, 0b101, 0b111, 0b001, 0b001},
	'5': {0b111, 0b100, 0b111, 0b001, 0b111},
	'6': {0b111, 0b100, 0b111, 0b101, 0b111},
	'7': {0b111, 0b001, 0b001, 0b010, 0b010},
	'8': {0b111, 0b101, 0b111, 0b101, 0b111},
	'9': {0b111, 0b101, 0b111, 0b001, 0b111},
	'+': {0b000, 0b010, 0b111, 0b010, 0b000},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'!': {0b010, 0b010, 0b010, 0b000, 0b010},
	'?': {0b111, 0b001, 0b011, 0b000, 0b010},
	'*': {0b101, 0b010, 0b111, 0b010, 0b101},
	'#': {0b101, 0b111, 0b101, 0b111, 0b101},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
}

// fallbackGlyph is drawn for any rune outside the table, so an exotic
// indicator glyph still produces a visible mark.
var fallbackGlyph = [glyphHeight]uint8{0b000, 0b111, 0b111, 0b111, 0b000}

func glyphFor(r rune) [glyphHeight]uint8 {
	if g, ok := glyphs[r]; ok {
		return g
	}
	return fallbackGlyph
}
