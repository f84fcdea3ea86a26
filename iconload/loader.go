// Package iconload fetches the bytes of a base favicon from a data URI, an
// http(s) URL, or a local file, and decodes them into an image. Loading the
// base icon is the one I/O suspension point of a badge render, so every
// fetch is context-aware and cancelable.
package iconload

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	// Favicon formats seen in the wild.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// maxIconBytes bounds remote icon downloads. Favicons are tiny; anything
// bigger is a misconfigured href.
const maxIconBytes = 4 << 20

// Loader fetches icon bytes. The zero value is not usable; call New.
type Loader struct {
	client *http.Client
	logger *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a Loader with a 15s default HTTP timeout.
func New(opts ...Option) *Loader {
	l := &Loader{
		client: &http.Client{Timeout: 15 * time.Second},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Fetch returns the raw bytes behind src: inline for data URIs, over HTTP
// for http(s) URLs, from disk for anything else.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetchHTTP(ctx, src)
	default:
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("iconload: read %s: %w", src, err)
		}
		return data, nil
	}
}

func (l *Loader) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("iconload: request %s: %w", src, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("iconload: fetch %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("iconload: fetch %s: status %d", src, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes+1))
	if err != nil {
		return nil, fmt.Errorf("iconload: read body %s: %w", src, err)
	}
	if len(data) > maxIconBytes {
		return nil, fmt.Errorf("iconload: %s exceeds %d bytes", src, maxIconBytes)
	}

	l.logger.Debug("iconload: fetched", "src", src, "bytes", len(data))
	return data, nil
}

// decodeDataURI handles data:[<mediatype>][;base64],<payload>.
func decodeDataURI(src string) ([]byte, error) {
	rest := strings.TrimPrefix(src, "data:")
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return nil, fmt.Errorf("iconload: malformed data URI")
	}
	meta, payload := rest[:comma], rest[comma+1:]

	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("iconload: data URI base64: %w", err)
		}
		return data, nil
	}

	decoded, err := url.QueryUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("iconload: data URI escape: %w", err)
	}
	return []byte(decoded), nil
}

// Decode parses fetched bytes into an image using the registered codecs
// (PNG, JPEG, GIF, BMP, WebP).
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("iconload: decode: %w", err)
	}
	return img, nil
}
