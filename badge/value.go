package badge

import (
	"strconv"

	"github.com/hazyhaar/tabbadge/render"
)

// Value is what the badge shows: a non-negative count, or the configured
// indicator glyph for everything else.
type Value struct {
	count     int
	indicator bool
}

// Count makes a counting value. Zero hides the badge entirely; negative
// counts are not countable and render the indicator glyph.
func Count(n int) Value {
	return Value{count: n}
}

// Indicator makes a value that always renders the indicator glyph.
func Indicator() Value {
	return Value{indicator: true}
}

// IsIndicator reports whether v renders the indicator glyph.
func (v Value) IsIndicator() bool {
	return v.indicator || v.count < 0
}

// Text resolves the badge text under the given options: "" for zero,
// "1".."99", "99+", or the indicator glyph.
func (v Value) Text(opts Options) string {
	if v.IsIndicator() {
		return opts.Indicator
	}
	return render.CountText(v.count)
}

// String describes v for logs and status reports.
func (v Value) String() string {
	if v.IsIndicator() {
		return "indicator"
	}
	return strconv.Itoa(v.count)
}
