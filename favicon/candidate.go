// Package favicon models the icon-link declarations of a document head and
// implements the ranking rule that picks the best base icon among them.
//
// A candidate qualifies when it has a non-empty href and its rel attribute,
// split on whitespace, contains the exact token "icon". Selection prefers the
// largest declared fixed size, with a scalable "any" declaration dominating
// everything. Candidates are read-only descriptors; the originating document
// adapter owns the underlying elements.
package favicon

import "strings"

// SizeAny is the sizes token declaring a scalable icon.
const SizeAny = "any"

// Candidate is one icon-link declaration, in document order.
type Candidate struct {
	// Href is the icon location. Empty href disqualifies the candidate.
	Href string

	// Rel is the raw rel attribute. Qualification requires the exact
	// whitespace-separated token "icon" (case-sensitive).
	Rel string

	// Sizes is the raw sizes attribute: "any", "WxH", or empty.
	Sizes string

	// Node is an opaque handle to the originating element, owned by the
	// document adapter. It lets Clear re-attach the exact original element.
	// Nil for adapters that restore from attributes instead.
	Node any
}

// Qualifies reports whether c is a usable icon declaration.
func (c Candidate) Qualifies() bool {
	if c.Href == "" {
		return false
	}
	for _, tok := range strings.Fields(c.Rel) {
		if tok == "icon" {
			return true
		}
	}
	return false
}

// ParseSize extracts the leading integer of a "WxH" sizes token, matching
// the permissive leading-digits parse of the original attribute grammar
// ("32x32" and "32abc" both yield 32). Returns false when the token has no
// leading digits; callers treat that the same as an absent descriptor.
func ParseSize(s string) (int, bool) {
	if i := strings.IndexAny(s, "xX"); i >= 0 {
		s = s[:i]
	}
	n := 0
	digits := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	return n, true
}
