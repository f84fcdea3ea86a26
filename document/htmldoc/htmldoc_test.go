package htmldoc

import (
	"context"
	"strings"
	"testing"
)

const page = `<!DOCTYPE html>
<html>
<head>
<title>Inbox</title>
<link rel="stylesheet" href="style.css">
<link rel="icon" href="a.png" sizes="32x32">
<link rel="shortcut icon" href="b.png" sizes="16x16">
</head>
<body></body>
</html>`

func parse(t *testing.T) *Doc {
	t.Helper()
	d, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return d
}

func TestIconLinks(t *testing.T) {
	d := parse(t)
	links, err := d.IconLinks(context.Background())
	if err != nil {
		t.Fatalf("icon links: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d candidates, want 2", len(links))
	}
	if links[0].Href != "a.png" || links[0].Sizes != "32x32" {
		t.Errorf("first candidate %+v", links[0])
	}
	if links[1].Href != "b.png" || links[1].Rel != "shortcut icon" {
		t.Errorf("second candidate %+v", links[1])
	}
}

func TestReplaceIconLinks(t *testing.T) {
	d := parse(t)
	ctx := context.Background()

	if err := d.ReplaceIconLinks(ctx, "data:image/png;base64,AAAA"); err != nil {
		t.Fatalf("replace: %v", err)
	}

	links, err := d.IconLinks(ctx)
	if err != nil {
		t.Fatalf("icon links: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d icon links after replace, want 1", len(links))
	}
	if links[0].Href != "data:image/png;base64,AAAA" || links[0].Rel != "icon" {
		t.Errorf("installed link %+v", links[0])
	}

	// The stylesheet link is untouched.
	var out strings.Builder
	if err := d.Render(&out); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.String(), `rel="stylesheet"`) {
		t.Error("stylesheet link removed by replace")
	}
	if strings.Contains(out.String(), "a.png") {
		t.Error("original icon link still present after replace")
	}
}

func TestRestoreIconLinks(t *testing.T) {
	d := parse(t)
	ctx := context.Background()

	snapshot, err := d.IconLinks(ctx)
	if err != nil {
		t.Fatalf("icon links: %v", err)
	}
	if err := d.ReplaceIconLinks(ctx, "data:x"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := d.RestoreIconLinks(ctx, snapshot); err != nil {
		t.Fatalf("restore: %v", err)
	}

	links, err := d.IconLinks(ctx)
	if err != nil {
		t.Fatalf("icon links: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("got %d icon links after restore, want 2", len(links))
	}
	if links[0].Href != "a.png" || links[1].Href != "b.png" {
		t.Errorf("restore order wrong: %q then %q", links[0].Href, links[1].Href)
	}
	// The exact original nodes are back, not rebuilt copies.
	if links[0].Node != snapshot[0].Node || links[1].Node != snapshot[1].Node {
		t.Error("restore did not re-attach the original nodes")
	}
}

func TestRestoreWithoutNodesRebuildsFromAttributes(t *testing.T) {
	d := parse(t)
	ctx := context.Background()

	snapshot, _ := d.IconLinks(ctx)
	for i := range snapshot {
		snapshot[i].Node = nil
	}
	if err := d.RestoreIconLinks(ctx, snapshot); err != nil {
		t.Fatalf("restore: %v", err)
	}
	links, _ := d.IconLinks(ctx)
	if len(links) != 2 || links[0].Sizes != "32x32" {
		t.Fatalf("rebuilt links wrong: %+v", links)
	}
}

func TestFragmentGetsSynthesizedHead(t *testing.T) {
	// html.Parse synthesizes html/head/body around fragments, so even a bare
	// paragraph yields an installable document.
	if _, err := Parse(strings.NewReader("<p>hi</p>")); err != nil {
		t.Fatalf("fragment parse should still find a synthesized head: %v", err)
	}
}

func TestDevicePixelRatio(t *testing.T) {
	d, err := Parse(strings.NewReader(page), WithDevicePixelRatio(2))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := d.DevicePixelRatio(context.Background()); got != 2 {
		t.Fatalf("dpr = %v, want 2", got)
	}
	if got := parse(t).DevicePixelRatio(context.Background()); got != 1 {
		t.Fatalf("default dpr = %v, want 1", got)
	}
}
