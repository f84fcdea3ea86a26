// Package badge maintains the per-page badge session: current value and
// options, the snapshot of the original icon links, the chosen base icon,
// and the install/restore cycle. A Badger is an explicit context object;
// create one per document instead of sharing process-wide state.
package badge

import "github.com/hazyhaar/tabbadge/render"

// Default appearance.
const (
	DefaultBackgroundColor = "#424242"
	DefaultColor           = "#ffffff"
	DefaultIndicator       = "!"
)

// Options is the badge appearance. Values are passed through to the
// renderer unvalidated; an unparseable color falls back to its default at
// draw time rather than failing the render.
type Options struct {
	BackgroundColor string `yaml:"background_color" json:"background_color"`
	Color           string `yaml:"color" json:"color"`
	Indicator       string `yaml:"indicator" json:"indicator"`
}

// DefaultOptions returns the stock appearance.
func DefaultOptions() Options {
	return Options{
		BackgroundColor: DefaultBackgroundColor,
		Color:           DefaultColor,
		Indicator:       DefaultIndicator,
	}
}

// OptionPatch overrides individual options. Empty fields keep the current
// value; present fields replace it.
type OptionPatch struct {
	BackgroundColor string `yaml:"background_color" json:"background_color"`
	Color           string `yaml:"color" json:"color"`
	Indicator       string `yaml:"indicator" json:"indicator"`
}

// Merge applies p to o in place. A nil patch is a no-op.
func (o *Options) Merge(p *OptionPatch) {
	if p == nil {
		return
	}
	if p.BackgroundColor != "" {
		o.BackgroundColor = p.BackgroundColor
	}
	if p.Color != "" {
		o.Color = p.Color
	}
	if p.Indicator != "" {
		o.Indicator = p.Indicator
	}
}

// Style resolves the option strings to concrete colors, falling back to the
// defaults for anything unparseable.
func (o Options) Style() render.Style {
	bg, ok := render.ParseColor(o.BackgroundColor)
	if !ok {
		bg, _ = render.ParseColor(DefaultBackgroundColor)
	}
	fg, ok := render.ParseColor(o.Color)
	if !ok {
		fg, _ = render.ParseColor(DefaultColor)
	}
	return render.Style{Background: bg, Foreground: fg}
}
