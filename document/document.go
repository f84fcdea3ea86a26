// Package document defines the host-page capability the badge core consumes:
// enumerating the icon links of the document head, swapping them for a single
// badged icon, and restoring the original set. Adapters exist for a parsed
// HTML tree (htmldoc) and a live Chrome tab (rodpage); tests use in-memory
// fakes.
package document

import (
	"context"

	"github.com/hazyhaar/tabbadge/favicon"
)

// Document is the host page seen by the badge session. Implementations own
// the underlying elements; the core only holds candidate descriptors.
type Document interface {
	// IconLinks returns the qualifying icon-link candidates in head order.
	IconLinks(ctx context.Context) ([]favicon.Candidate, error)

	// ReplaceIconLinks removes every icon link from the head and appends a
	// single fresh <link rel="icon"> with the given href, leaving exactly
	// one icon link in the document.
	ReplaceIconLinks(ctx context.Context, href string) error

	// RestoreIconLinks removes every icon link and re-appends the snapshot's
	// original elements in their original order.
	RestoreIconLinks(ctx context.Context, snapshot []favicon.Candidate) error

	// DevicePixelRatio reports the page's logical-to-physical pixel scale.
	// Adapters without a real display return 1.
	DevicePixelRatio(ctx context.Context) float64
}
