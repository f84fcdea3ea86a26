package rodpage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/tabbadge/favicon"
)

// Page is a live tab exposed as a badge document.
type Page struct {
	page   *rod.Page
	url    string
	logger *slog.Logger
}

// Open creates a stealth tab, navigates to pageURL, and waits for load.
func Open(ctx context.Context, mgr *Manager, pageURL string) (*Page, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("rodpage: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("rodpage: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("rodpage: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		mgr.cfg.Logger.Warn("rodpage: wait load timeout", "url", pageURL, "error", err)
	}

	return &Page{page: page, url: pageURL, logger: mgr.cfg.Logger}, nil
}

// Attach wraps an existing Rod page (for example one found via
// Browser().Pages()).
func Attach(page *rod.Page, logger *slog.Logger) *Page {
	if logger == nil {
		logger = slog.Default()
	}
	return &Page{page: page, logger: logger}
}

// URL is the navigated address, empty for attached pages.
func (p *Page) URL() string {
	return p.url
}

// Close closes the tab.
func (p *Page) Close() error {
	if p.page != nil {
		return p.page.Close()
	}
	return nil
}

// IconLinks enumerates head links in document order and qualifies them
// host-side, so the selection semantics stay in one place.
func (p *Page) IconLinks(ctx context.Context) ([]favicon.Candidate, error) {
	res, err := p.page.Context(ctx).Eval(`() =>
		Array.from(document.head.querySelectorAll('link')).map(l => ({
			href: l.getAttribute('href') || '',
			rel: l.getAttribute('rel') || '',
			sizes: l.getAttribute('sizes') || '',
		}))`)
	if err != nil {
		return nil, fmt.Errorf("rodpage: list icon links: %w", err)
	}

	var out []favicon.Candidate
	for _, el := range res.Value.Arr() {
		c := favicon.Candidate{
			Href:  el.Get("href").Str(),
			Rel:   el.Get("rel").Str(),
			Sizes: el.Get("sizes").Str(),
		}
		if c.Qualifies() {
			out = append(out, c)
		}
	}
	return out, nil
}

// ReplaceIconLinks removes every icon link and appends one fresh element
// pointing at href (typically a data URI).
func (p *Page) ReplaceIconLinks(ctx context.Context, href string) error {
	_, err := p.page.Context(ctx).Eval(`(href) => {
		const isIcon = l => (l.getAttribute('href') || '') !== '' &&
			(l.getAttribute('rel') || '').split(/\s+/).includes('icon');
		for (const l of Array.from(document.head.querySelectorAll('link'))) {
			if (isIcon(l)) l.remove();
		}
		const link = document.createElement('link');
		link.setAttribute('rel', 'icon');
		link.setAttribute('href', href);
		document.head.appendChild(link);
	}`, href)
	if err != nil {
		return fmt.Errorf("rodpage: replace icon links: %w", err)
	}
	return nil
}

// RestoreIconLinks removes every icon link and rebuilds the snapshot in
// order from the captured href/rel/sizes attributes.
func (p *Page) RestoreIconLinks(ctx context.Context, snapshot []favicon.Candidate) error {
	type linkAttrs struct {
		Href  string `json:"href"`
		Rel   string `json:"rel"`
		Sizes string `json:"sizes"`
	}
	links := make([]linkAttrs, 0, len(snapshot))
	for _, c := range snapshot {
		links = append(links, linkAttrs{Href: c.Href, Rel: c.Rel, Sizes: c.Sizes})
	}

	_, err := p.page.Context(ctx).Eval(`(links) => {
		const isIcon = l => (l.getAttribute('href') || '') !== '' &&
			(l.getAttribute('rel') || '').split(/\s+/).includes('icon');
		for (const l of Array.from(document.head.querySelectorAll('link'))) {
			if (isIcon(l)) l.remove();
		}
		for (const entry of links) {
			const link = document.createElement('link');
			link.setAttribute('rel', entry.rel);
			link.setAttribute('href', entry.href);
			if (entry.sizes) link.setAttribute('sizes', entry.sizes);
			document.head.appendChild(link);
		}
	}`, links)
	if err != nil {
		return fmt.Errorf("rodpage: restore icon links: %w", err)
	}
	return nil
}

// DevicePixelRatio queries the live value; 1 when the query fails.
func (p *Page) DevicePixelRatio(ctx context.Context) float64 {
	res, err := p.page.Context(ctx).Eval(`() => window.devicePixelRatio`)
	if err != nil {
		p.logger.Warn("rodpage: devicePixelRatio query failed", "error", err)
		return 1
	}
	dpr := res.Value.Num()
	if dpr <= 0 {
		return 1
	}
	return dpr
}
