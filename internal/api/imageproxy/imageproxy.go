// Package imageproxy fetches remote destination images server-side so the
// browser never loads third-party hosts directly. Failed or disallowed
// fetches redirect to a catalog fallback image instead of erroring, so a
// broken hero image never breaks a recommendation card.
package imageproxy

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripcanvas/tripcanvas/internal/api"
	"github.com/tripcanvas/tripcanvas/internal/api/catalog"
)

const (
	fetchTimeout  = 10 * time.Second
	maxImageBytes = 8 << 20
	proxyRoute    = "/api/image-proxy"
)

type HandlerImpl struct {
	client *http.Client
	logger *slog.Logger
}

func NewHandlerImpl(logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

// Proxy serves GET /api/image-proxy?url=...&name=...&category=...
// name and category are optional hints for picking a fallback image.
func (h *HandlerImpl) Proxy(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ImageProxyHandler").Start(r.Context(), "Proxy", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String(proxyRoute),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Proxy"))

	rawURL := r.URL.Query().Get("url")
	name := r.URL.Query().Get("name")
	category := r.URL.Query().Get("category")

	if rawURL == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "url query parameter is required")
		return
	}

	target, ok := h.allowedTarget(r, rawURL)
	if !ok {
		l.WarnContext(ctx, "Rejected proxy target", slog.String("url", rawURL))
		span.SetStatus(codes.Error, "Disallowed proxy target")
		h.redirectFallback(w, r, name, category)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		h.redirectFallback(w, r, name, category)
		return
	}
	req.Header.Set("Accept", "image/*")

	resp, err := h.client.Do(req)
	if err != nil {
		l.WarnContext(ctx, "Image fetch failed", slog.String("url", target), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Fetch failed")
		h.redirectFallback(w, r, name, category)
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(contentType, "image/") {
		l.WarnContext(ctx, "Upstream did not return an image",
			slog.String("url", target),
			slog.Int("status", resp.StatusCode),
			slog.String("content_type", contentType))
		span.SetStatus(codes.Error, "Upstream not an image")
		h.redirectFallback(w, r, name, category)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, io.LimitReader(resp.Body, maxImageBytes)); err != nil {
		l.WarnContext(ctx, "Streaming image body failed", slog.Any("error", err))
		span.RecordError(err)
		return
	}
	span.SetStatus(codes.Ok, "Image proxied")
}

// allowedTarget rejects non-HTTP schemes, requests pointed back at this
// server, and URLs that are already proxy links, which would loop.
func (h *HandlerImpl) allowedTarget(r *http.Request, rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" || u.Host == r.Host {
		return "", false
	}
	if strings.Contains(u.Path, proxyRoute) {
		return "", false
	}
	return u.String(), true
}

func (h *HandlerImpl) redirectFallback(w http.ResponseWriter, r *http.Request, name, category string) {
	http.Redirect(w, r, catalog.FallbackImage(name, category), http.StatusFound)
}
