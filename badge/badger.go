package badge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hazyhaar/tabbadge/document"
	"github.com/hazyhaar/tabbadge/favicon"
	"github.com/hazyhaar/tabbadge/iconload"
	"github.com/hazyhaar/tabbadge/render"
)

// Availability distinguishes why the badge feature is usable or not.
type Availability int

const (
	// AvailabilityOK: a surface exists and a base icon candidate resolves.
	AvailabilityOK Availability = iota
	// AvailabilityNoSurface: the drawing surface could not be created.
	// This state is permanent for the Badger's lifetime.
	AvailabilityNoSurface
	// AvailabilityNoCandidate: no qualifying icon link in the document.
	AvailabilityNoCandidate
)

func (a Availability) String() string {
	switch a {
	case AvailabilityOK:
		return "ok"
	case AvailabilityNoSurface:
		return "no_surface"
	case AvailabilityNoCandidate:
		return "no_candidate"
	default:
		return "unknown"
	}
}

// Badger is one badge session over one document. All methods are safe for
// concurrent use; renders are sequenced by default so a superseded Set never
// overwrites a later one (disable with WithoutRenderSequencing to get the
// original last-completion-wins behavior).
type Badger struct {
	doc        document.Document
	loader     *iconload.Loader
	logger     *slog.Logger
	newSurface func(size int) (render.Surface, error)
	sequenced  bool

	mu           sync.Mutex
	comp         *render.Compositor
	surfaceTried bool
	snapshot     []favicon.Candidate
	chosenBase   *favicon.Candidate
	value        Value
	options      Options
	gen          uint64
	cancelRender context.CancelFunc
}

// BadgerOption configures a Badger.
type BadgerOption func(*Badger)

// WithLoader replaces the default icon loader.
func WithLoader(l *iconload.Loader) BadgerOption {
	return func(b *Badger) { b.loader = l }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) BadgerOption {
	return func(b *Badger) { b.logger = logger }
}

// WithSurfaceFactory replaces the default in-memory surface, e.g. for tests
// or alternative raster backends.
func WithSurfaceFactory(f func(size int) (render.Surface, error)) BadgerOption {
	return func(b *Badger) { b.newSurface = f }
}

// WithoutRenderSequencing restores the original interleaving behavior: a
// slow earlier render may complete after, and overwrite, a faster later one.
func WithoutRenderSequencing() BadgerOption {
	return func(b *Badger) { b.sequenced = false }
}

// New creates a badge session over doc.
func New(doc document.Document, opts ...BadgerOption) *Badger {
	b := &Badger{
		doc:        doc,
		loader:     iconload.New(),
		logger:     slog.Default(),
		newSurface: render.NewSurface,
		sequenced:  true,
		options:    DefaultOptions(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// ensureCompositorLocked creates the surface and compositor once. Creation
// is attempted a single time; failure leaves the Badger permanently
// unavailable, matching the degraded mode of an unsupported drawing surface.
func (b *Badger) ensureCompositorLocked(ctx context.Context) {
	if b.surfaceTried {
		return
	}
	b.surfaceTried = true

	ratio := render.Ratio(b.doc.DevicePixelRatio(ctx))
	surface, err := b.newSurface(render.CanvasSize(ratio))
	if err != nil {
		b.logger.Warn("badge: surface unavailable", "error", err)
		return
	}
	comp, err := render.NewCompositor(surface, ratio)
	if err != nil {
		b.logger.Warn("badge: compositor unavailable", "error", err)
		return
	}
	b.comp = comp
}

// Availability reports the current tri-state availability. The surface is
// created lazily on first call; candidate resolution reuses the cached base
// icon when a render has already succeeded.
func (b *Badger) Availability(ctx context.Context) Availability {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ensureCompositorLocked(ctx)
	if b.comp == nil {
		return AvailabilityNoSurface
	}
	if b.chosenBase != nil {
		return AvailabilityOK
	}
	links, err := b.doc.IconLinks(ctx)
	if err != nil {
		b.logger.Warn("badge: icon discovery failed", "error", err)
		return AvailabilityNoCandidate
	}
	if favicon.SelectBest(links) == nil {
		return AvailabilityNoCandidate
	}
	return AvailabilityOK
}

// IsAvailable is the boolean gate over Availability.
func (b *Badger) IsAvailable(ctx context.Context) bool {
	return b.Availability(ctx) == AvailabilityOK
}

// Set records value and options, renders the badge over the session's base
// icon, and installs the result as the document's only icon link. Returns
// false with no side effects when the feature is unavailable, and false when
// rendering or installing fails or the render was superseded.
func (b *Badger) Set(ctx context.Context, v Value, patch *OptionPatch) bool {
	b.mu.Lock()

	b.ensureCompositorLocked(ctx)
	if b.comp == nil {
		b.mu.Unlock()
		return false
	}

	// Discovery runs once per session epoch: after the first successful
	// render the chosen base is reused until Clear.
	snapshot := b.snapshot
	base := b.chosenBase
	if base == nil {
		links, err := b.doc.IconLinks(ctx)
		if err != nil {
			b.logger.Warn("badge: icon discovery failed", "error", err)
			b.mu.Unlock()
			return false
		}
		best := favicon.SelectBest(links)
		if best == nil {
			b.mu.Unlock()
			return false
		}
		chosen := *best
		snapshot, base = links, &chosen
	}

	b.options.Merge(patch)
	b.value = v
	text := v.Text(b.options)
	style := b.options.Style()

	b.gen++
	myGen := b.gen
	loadCtx := ctx
	if b.sequenced {
		if b.cancelRender != nil {
			b.cancelRender()
		}
		loadCtx, b.cancelRender = context.WithCancel(ctx)
	}
	baseHref := base.Href
	b.mu.Unlock()

	// The icon load is the only suspension point; it runs outside the lock
	// so a later Set or Clear can interleave (and, when sequenced, cancel it).
	data, err := b.loader.Fetch(loadCtx, baseHref)
	if err != nil {
		b.logger.Warn("badge: base icon load failed", "href", baseHref, "error", err)
		return false
	}
	img, err := iconload.Decode(data)
	if err != nil {
		b.logger.Warn("badge: base icon decode failed", "href", baseHref, "error", err)
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sequenced {
		if b.gen != myGen {
			// A later Set or Clear superseded this render.
			return false
		}
		if b.cancelRender != nil {
			b.cancelRender()
			b.cancelRender = nil
		}
	}

	uri, err := b.comp.Compose(img, text, style)
	if err != nil {
		b.logger.Error("badge: compose failed", "error", err)
		return false
	}
	if err := b.doc.ReplaceIconLinks(ctx, uri); err != nil {
		b.logger.Error("badge: install failed", "error", err)
		return false
	}

	b.snapshot = snapshot
	b.chosenBase = base
	b.logger.Debug("badge: installed", "value", v.String(), "text", text)
	return true
}

// Clear restores the originally snapshotted icon links in order and forgets
// the snapshot and chosen base. A clear without a snapshot is a no-op.
func (b *Badger) Clear(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.snapshot == nil {
		return
	}
	if err := b.doc.RestoreIconLinks(ctx, b.snapshot); err != nil {
		// Keep the snapshot so a later Clear can retry.
		b.logger.Error("badge: restore failed", "error", err)
		return
	}
	b.snapshot = nil
	b.chosenBase = nil

	// Invalidate any in-flight render so it cannot stomp the restored icons.
	b.gen++
	if b.cancelRender != nil {
		b.cancelRender()
		b.cancelRender = nil
	}
	b.logger.Debug("badge: cleared")
}

// Options returns a copy of the current merged options.
func (b *Badger) Options() Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.options
}

// CurrentValue returns the last recorded value.
func (b *Badger) CurrentValue() Value {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}
