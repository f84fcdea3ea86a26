// Package htmldoc adapts a parsed HTML tree to the document capability.
// It serves offline documents, tests, and server-side rendering; restore
// re-attaches the exact original link nodes, preserving attributes the
// candidate descriptors never captured.
package htmldoc

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/tabbadge/favicon"
)

// Doc wraps an *html.Node document. Not safe for concurrent use.
type Doc struct {
	root *html.Node
	head *html.Node
	dpr  float64
}

// Option configures a Doc.
type Option func(*Doc)

// WithDevicePixelRatio overrides the reported ratio (default 1).
func WithDevicePixelRatio(dpr float64) Option {
	return func(d *Doc) { d.dpr = dpr }
}

// Parse reads and wraps an HTML document.
func Parse(r io.Reader, opts ...Option) (*Doc, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("htmldoc: parse: %w", err)
	}
	return New(root, opts...)
}

// New wraps an already-parsed document. Fails when the tree has no head:
// without one there is nowhere to install an icon.
func New(root *html.Node, opts ...Option) (*Doc, error) {
	head := findHead(root)
	if head == nil {
		return nil, fmt.Errorf("htmldoc: document has no head")
	}
	d := &Doc{root: root, head: head, dpr: 1}
	for _, o := range opts {
		o(d)
	}
	return d, nil
}

// Render serializes the (possibly mutated) document.
func (d *Doc) Render(w io.Writer) error {
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("htmldoc: render: %w", err)
	}
	return nil
}

// IconLinks walks the head's link elements in order and returns the
// qualifying candidates, each carrying its node for later restore.
func (d *Doc) IconLinks(ctx context.Context) ([]favicon.Candidate, error) {
	var out []favicon.Candidate
	for n := d.head.FirstChild; n != nil; n = n.NextSibling {
		if !isLink(n) {
			continue
		}
		c := favicon.Candidate{
			Href:  attr(n, "href"),
			Rel:   attr(n, "rel"),
			Sizes: attr(n, "sizes"),
			Node:  n,
		}
		if c.Qualifies() {
			out = append(out, c)
		}
	}
	return out, nil
}

// ReplaceIconLinks removes all icon links and appends one fresh link element.
func (d *Doc) ReplaceIconLinks(ctx context.Context, href string) error {
	d.removeIconLinks()
	d.head.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Link,
		Data:     "link",
		Attr: []html.Attribute{
			{Key: "rel", Val: "icon"},
			{Key: "href", Val: href},
		},
	})
	return nil
}

// RestoreIconLinks removes all icon links and re-appends the snapshot's
// original nodes in order. A candidate without a node handle (one that came
// from a different adapter) is rebuilt from its attributes.
func (d *Doc) RestoreIconLinks(ctx context.Context, snapshot []favicon.Candidate) error {
	d.removeIconLinks()
	for _, c := range snapshot {
		if n, ok := c.Node.(*html.Node); ok && n != nil {
			detach(n)
			d.head.AppendChild(n)
			continue
		}
		link := &html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Link,
			Data:     "link",
			Attr: []html.Attribute{
				{Key: "rel", Val: c.Rel},
				{Key: "href", Val: c.Href},
			},
		}
		if c.Sizes != "" {
			link.Attr = append(link.Attr, html.Attribute{Key: "sizes", Val: c.Sizes})
		}
		d.head.AppendChild(link)
	}
	return nil
}

// DevicePixelRatio returns the configured ratio.
func (d *Doc) DevicePixelRatio(ctx context.Context) float64 {
	return d.dpr
}

func (d *Doc) removeIconLinks() {
	n := d.head.FirstChild
	for n != nil {
		next := n.NextSibling
		if isLink(n) {
			c := favicon.Candidate{Href: attr(n, "href"), Rel: attr(n, "rel")}
			if c.Qualifies() {
				d.head.RemoveChild(n)
			}
		}
		n = next
	}
}

func findHead(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Head {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if head := findHead(c); head != nil {
			return head
		}
	}
	return nil
}

func isLink(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Link
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}
