package badge

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hazyhaar/tabbadge/favicon"
	"github.com/hazyhaar/tabbadge/render"
)

// fakeDoc is an in-memory document: a flat list of head links plus counters
// for the interactions the session contract pins down.
type fakeDoc struct {
	mu            sync.Mutex
	links         []favicon.Candidate
	discoverCalls int
	installed     []string
	dpr           float64
	replaceErr    error
}

func (d *fakeDoc) IconLinks(ctx context.Context) ([]favicon.Candidate, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.discoverCalls++
	return favicon.Qualify(d.links), nil
}

func (d *fakeDoc) ReplaceIconLinks(ctx context.Context, href string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.replaceErr != nil {
		return d.replaceErr
	}
	d.removeIconsLocked()
	d.links = append(d.links, favicon.Candidate{Href: href, Rel: "icon"})
	d.installed = append(d.installed, href)
	return nil
}

func (d *fakeDoc) RestoreIconLinks(ctx context.Context, snapshot []favicon.Candidate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removeIconsLocked()
	d.links = append(d.links, snapshot...)
	return nil
}

func (d *fakeDoc) DevicePixelRatio(ctx context.Context) float64 {
	if d.dpr > 0 {
		return d.dpr
	}
	return 1
}

func (d *fakeDoc) removeIconsLocked() {
	var kept []favicon.Candidate
	for _, l := range d.links {
		if !l.Qualifies() {
			kept = append(kept, l)
		}
	}
	d.links = kept
}

func (d *fakeDoc) iconLinks() []favicon.Candidate {
	d.mu.Lock()
	defer d.mu.Unlock()
	return favicon.Qualify(d.links)
}

func (d *fakeDoc) discoveries() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.discoverCalls
}

func (d *fakeDoc) lastInstalled() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.installed) == 0 {
		return ""
	}
	return d.installed[len(d.installed)-1]
}

func solidPNGDataURI(t *testing.T, c color.RGBA, size int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

var baseBlue = color.RGBA{0x10, 0x20, 0xff, 0xff}

func twoIconDoc(t *testing.T) *fakeDoc {
	t.Helper()
	return &fakeDoc{links: []favicon.Candidate{
		{Href: "style.css", Rel: "stylesheet"},
		{Href: solidPNGDataURI(t, baseBlue, 32), Rel: "icon", Sizes: "32x32"},
		{Href: solidPNGDataURI(t, color.RGBA{A: 0xff}, 16), Rel: "icon", Sizes: "16x16"},
	}}
}

func decodeInstalled(t *testing.T, uri string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, render.PNGDataURIPrefix))
	if err != nil {
		t.Fatalf("installed URI base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("installed URI png: %v", err)
	}
	return img
}

func hasColor(img image.Image, want color.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.RGBAModel.Convert(img.At(x, y)) == want {
				return true
			}
		}
	}
	return false
}

func TestSet_InstallsSingleIconLink(t *testing.T) {
	doc := twoIconDoc(t)
	b := New(doc)
	ctx := context.Background()

	if !b.Set(ctx, Count(5), nil) {
		t.Fatal("Set(5) returned false")
	}

	icons := doc.iconLinks()
	if len(icons) != 1 {
		t.Fatalf("got %d icon links after Set, want 1", len(icons))
	}
	if !strings.HasPrefix(icons[0].Href, render.PNGDataURIPrefix) {
		t.Fatalf("installed href is not a PNG data URI: %.40s", icons[0].Href)
	}

	img := decodeInstalled(t, icons[0].Href)
	if img.Bounds().Dx() != 16 {
		t.Errorf("installed icon is %dpx, want 16 at dpr 1", img.Bounds().Dx())
	}
	// The 32x32 candidate won selection, so the badge sits over blue.
	if !hasColor(img, baseBlue) {
		t.Error("installed icon does not contain the selected 32x32 base color")
	}
	if !hasColor(img, color.RGBA{0x42, 0x42, 0x42, 0xff}) {
		t.Error("installed icon has no badge background")
	}
}

func TestSet_Twice_ReusesChosenBase(t *testing.T) {
	doc := twoIconDoc(t)
	b := New(doc)
	ctx := context.Background()

	if !b.Set(ctx, Count(5), nil) {
		t.Fatal("first Set failed")
	}
	if !b.Set(ctx, Count(7), nil) {
		t.Fatal("second Set failed")
	}

	if got := doc.discoveries(); got != 1 {
		t.Errorf("discovery ran %d times, want 1 per session", got)
	}
	if got := len(doc.iconLinks()); got != 1 {
		t.Errorf("got %d icon links, want exactly 1", got)
	}
}

func TestClear_RestoresSnapshotInOrder(t *testing.T) {
	doc := twoIconDoc(t)
	original := doc.iconLinks()
	b := New(doc)
	ctx := context.Background()

	if !b.Set(ctx, Count(5), nil) {
		t.Fatal("Set failed")
	}
	b.Clear(ctx)

	restored := doc.iconLinks()
	if len(restored) != len(original) {
		t.Fatalf("restored %d icon links, want %d", len(restored), len(original))
	}
	for i := range original {
		if restored[i].Href != original[i].Href || restored[i].Sizes != original[i].Sizes {
			t.Errorf("restored[%d] = %+v, want %+v", i, restored[i], original[i])
		}
	}

	// Clearing again without a snapshot is a no-op.
	b.Clear(ctx)
	if got := len(doc.iconLinks()); got != len(original) {
		t.Errorf("second Clear changed the document: %d icon links", got)
	}

	// A new Set starts a fresh session epoch and re-discovers.
	before := doc.discoveries()
	if !b.Set(ctx, Count(1), nil) {
		t.Fatal("Set after Clear failed")
	}
	if got := doc.discoveries(); got != before+1 {
		t.Errorf("Set after Clear ran discovery %d times, want exactly one more", got-before)
	}
}

func TestSet_NoCandidates(t *testing.T) {
	doc := &fakeDoc{links: []favicon.Candidate{{Href: "style.css", Rel: "stylesheet"}}}
	b := New(doc)
	ctx := context.Background()

	if b.IsAvailable(ctx) {
		t.Error("IsAvailable true with no candidates")
	}
	if got := b.Availability(ctx); got != AvailabilityNoCandidate {
		t.Errorf("Availability = %v, want no_candidate", got)
	}
	if b.Set(ctx, Count(5), &OptionPatch{BackgroundColor: "#ff0000"}) {
		t.Fatal("Set succeeded with no candidates")
	}
	// No side effects: the patch was not merged.
	if got := b.Options().BackgroundColor; got != DefaultBackgroundColor {
		t.Errorf("options mutated by failed Set: %q", got)
	}
}

func TestSet_SurfaceFailureIsPermanent(t *testing.T) {
	calls := 0
	factory := func(size int) (render.Surface, error) {
		calls++
		return nil, fmt.Errorf("no raster support")
	}
	doc := twoIconDoc(t)
	b := New(doc, WithSurfaceFactory(factory))
	ctx := context.Background()

	if b.IsAvailable(ctx) {
		t.Error("IsAvailable true without a surface")
	}
	if got := b.Availability(ctx); got != AvailabilityNoSurface {
		t.Errorf("Availability = %v, want no_surface", got)
	}
	if b.Set(ctx, Count(5), nil) {
		t.Error("Set succeeded without a surface")
	}
	if calls != 1 {
		t.Errorf("surface creation attempted %d times, want once", calls)
	}
}

func TestSet_ZeroCountInstallsPlainIcon(t *testing.T) {
	doc := twoIconDoc(t)
	b := New(doc)
	ctx := context.Background()

	if !b.Set(ctx, Count(0), nil) {
		t.Fatal("Set(0) failed")
	}
	img := decodeInstalled(t, doc.lastInstalled())
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if got := color.RGBAModel.Convert(img.At(x, y)); got != baseBlue {
				t.Fatalf("pixel (%d,%d) = %v, want plain base %v", x, y, got, baseBlue)
			}
		}
	}
}

func TestSet_IndicatorModes(t *testing.T) {
	opts := DefaultOptions()
	if got := Count(47).Text(opts); got != "47" {
		t.Errorf("Count(47) text %q", got)
	}
	if got := Count(123).Text(opts); got != "99+" {
		t.Errorf("Count(123) text %q", got)
	}
	if got := Count(-5).Text(opts); got != "!" {
		t.Errorf("Count(-5) text %q, want indicator", got)
	}
	if got := Indicator().Text(opts); got != "!" {
		t.Errorf("Indicator() text %q", got)
	}
	opts.Indicator = "?"
	if got := Indicator().Text(opts); got != "?" {
		t.Errorf("Indicator() with ? text %q", got)
	}
}

func TestOptionsMerge(t *testing.T) {
	o := DefaultOptions()
	o.Merge(&OptionPatch{Color: "#000000"})
	if o.Color != "#000000" || o.BackgroundColor != DefaultBackgroundColor || o.Indicator != DefaultIndicator {
		t.Errorf("partial merge wrong: %+v", o)
	}
	o.Merge(nil)
	if o.Color != "#000000" {
		t.Errorf("nil merge mutated options: %+v", o)
	}
}

func TestSet_MergedOptionsPersistAcrossCalls(t *testing.T) {
	doc := twoIconDoc(t)
	b := New(doc)
	ctx := context.Background()

	red := color.RGBA{0xff, 0x00, 0x00, 0xff}
	if !b.Set(ctx, Count(5), &OptionPatch{BackgroundColor: "#ff0000"}) {
		t.Fatal("Set failed")
	}
	if !b.Set(ctx, Count(6), nil) {
		t.Fatal("second Set failed")
	}
	// The red background from the first call is still in force.
	img := decodeInstalled(t, doc.lastInstalled())
	if !hasColor(img, red) {
		t.Error("merged background color did not persist to the next Set")
	}
}

func TestDevicePixelRatioScalesSurface(t *testing.T) {
	doc := twoIconDoc(t)
	doc.dpr = 2
	b := New(doc)
	ctx := context.Background()

	if !b.Set(ctx, Count(5), nil) {
		t.Fatal("Set failed")
	}
	img := decodeInstalled(t, doc.lastInstalled())
	if img.Bounds().Dx() != 32 {
		t.Errorf("installed icon %dpx, want 32 at dpr 2", img.Bounds().Dx())
	}
}

// slowIconServer serves the base icon. The first request signals its arrival
// on arrived and then blocks until release closes or the request is canceled.
func slowIconServer(t *testing.T, arrived chan<- struct{}, release <-chan struct{}) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, baseBlue)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var mu sync.Mutex
	first := true
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		blockThis := first
		first = false
		mu.Unlock()
		if blockThis {
			close(arrived)
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
		}
		w.Write(buf.Bytes())
	}))
}

func TestSet_SupersededRenderIsDiscarded(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	srv := slowIconServer(t, arrived, release)
	defer srv.Close()

	doc := &fakeDoc{links: []favicon.Candidate{
		{Href: srv.URL + "/favicon.png", Rel: "icon", Sizes: "32x32"},
	}}
	b := New(doc)
	ctx := context.Background()

	firstDone := make(chan bool, 1)
	go func() {
		firstDone <- b.Set(ctx, Count(0), nil) // plain icon, slow load
	}()
	<-arrived // the first render is now blocked in its icon load

	// The second Set cancels the first one's load and installs its badge.
	if !b.Set(ctx, Count(5), nil) {
		t.Fatal("second Set failed")
	}
	if first := <-firstDone; first {
		t.Error("superseded first Set reported success")
	}

	// The installed icon is the second render: badge present.
	img := decodeInstalled(t, doc.lastInstalled())
	if !hasColor(img, color.RGBA{0x42, 0x42, 0x42, 0xff}) {
		t.Error("final icon lost the later render's badge")
	}
}

func TestSet_WithoutSequencingLastCompletionWins(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	srv := slowIconServer(t, arrived, release)
	defer srv.Close()

	doc := &fakeDoc{links: []favicon.Candidate{
		{Href: srv.URL + "/favicon.png", Rel: "icon", Sizes: "32x32"},
	}}
	b := New(doc, WithoutRenderSequencing())
	ctx := context.Background()

	firstDone := make(chan bool, 1)
	go func() {
		firstDone <- b.Set(ctx, Count(0), nil) // plain icon, slow load
	}()
	<-arrived

	if !b.Set(ctx, Count(5), nil) {
		t.Fatal("second Set failed")
	}
	withBadge := decodeInstalled(t, doc.lastInstalled())
	if !hasColor(withBadge, color.RGBA{0x42, 0x42, 0x42, 0xff}) {
		t.Fatal("second Set did not draw a badge")
	}

	// Releasing the slow load lets the earlier render complete and
	// overwrite the newer icon: the documented legacy race.
	close(release)
	if first := <-firstDone; !first {
		t.Fatal("legacy-mode slow Set should still succeed")
	}
	plain := decodeInstalled(t, doc.lastInstalled())
	if hasColor(plain, color.RGBA{0x42, 0x42, 0x42, 0xff}) {
		t.Error("legacy mode should let the slow plain render win")
	}
}
