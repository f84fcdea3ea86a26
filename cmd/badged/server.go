package main

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/tabbadge/badge"
	"github.com/hazyhaar/tabbadge/iconload"
	"github.com/hazyhaar/tabbadge/observability"
	"github.com/hazyhaar/tabbadge/render"
)

type server struct {
	logger *slog.Logger
	loader *iconload.Loader
}

func newRouter(logger *slog.Logger, reqlog *observability.RequestLogger, loader *iconload.Loader) chi.Router {
	s := &server{logger: logger, loader: loader}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(reqlog.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/v1/badge", s.handleBadge)

	return r
}

// handleBadge composes a badge over the supplied icon and returns the result
// as PNG bytes (default) or as a data URI (format=datauri).
//
// Query parameters: icon (required; http(s) URL or data URI), count,
// indicator, bg, fg, glyph, dpr, format.
func (s *server) handleBadge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	icon := q.Get("icon")
	if icon == "" {
		http.Error(w, "missing icon parameter", http.StatusBadRequest)
		return
	}
	// File paths are rejected: the loader can read local files, but a network
	// service must not be steered into the filesystem.
	if !strings.HasPrefix(icon, "data:") &&
		!strings.HasPrefix(icon, "http://") && !strings.HasPrefix(icon, "https://") {
		http.Error(w, "icon must be a data URI or http(s) URL", http.StatusBadRequest)
		return
	}

	count := 0
	if c := q.Get("count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil {
			http.Error(w, "invalid count", http.StatusBadRequest)
			return
		}
		count = n
	}
	indicator := q.Get("indicator") == "true" || q.Get("indicator") == "1"

	dpr := 1.0
	if d := q.Get("dpr"); d != "" {
		f, err := strconv.ParseFloat(d, 64)
		if err != nil {
			http.Error(w, "invalid dpr", http.StatusBadRequest)
			return
		}
		dpr = f
	}

	opts := badge.DefaultOptions()
	opts.Merge(&badge.OptionPatch{
		BackgroundColor: q.Get("bg"),
		Color:           q.Get("fg"),
		Indicator:       q.Get("glyph"),
	})

	v := badge.Count(count)
	if indicator {
		v = badge.Indicator()
	}

	data, err := s.loader.Fetch(r.Context(), icon)
	if err != nil {
		s.logger.Warn("badged: icon fetch failed", "error", err)
		http.Error(w, "icon fetch failed", http.StatusBadGateway)
		return
	}
	img, err := iconload.Decode(data)
	if err != nil {
		http.Error(w, "icon decode failed", http.StatusUnprocessableEntity)
		return
	}

	ratio := render.Ratio(dpr)
	surface, err := render.NewSurface(render.CanvasSize(ratio))
	if err != nil {
		s.logger.Error("badged: surface", "error", err)
		http.Error(w, "render unavailable", http.StatusInternalServerError)
		return
	}
	comp, err := render.NewCompositor(surface, ratio)
	if err != nil {
		s.logger.Error("badged: compositor", "error", err)
		http.Error(w, "render unavailable", http.StatusInternalServerError)
		return
	}

	uri, err := comp.Compose(img, v.Text(opts), opts.Style())
	if err != nil {
		s.logger.Error("badged: compose failed", "error", err)
		http.Error(w, "compose failed", http.StatusInternalServerError)
		return
	}

	if q.Get("format") == "datauri" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(uri))
		return
	}

	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, render.PNGDataURIPrefix))
	if err != nil {
		s.logger.Error("badged: data URI decode failed", "error", err)
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
