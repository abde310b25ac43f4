package imageproxy

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *HandlerImpl {
	return NewHandlerImpl(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProxyMissingURL(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler().Proxy(rec, httptest.NewRequest(http.MethodGet, "/api/image-proxy", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProxyStreamsImage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer upstream.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/image-proxy?url="+url.QueryEscape(upstream.URL+"/hero.png"), nil)
	newTestHandler().Proxy(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestProxyFallsBackOnUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer upstream.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/image-proxy?url="+url.QueryEscape(upstream.URL)+"&category=Beach", nil)
	newTestHandler().Proxy(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Location"))
}

func TestProxyRejectsLoopsAndBadSchemes(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"same host", "http://example.com/anything"},
		{"already proxied", "https://other.example/api/image-proxy?url=x"},
		{"file scheme", "file:///etc/passwd"},
		{"relative", "/static/pic.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/image-proxy?url="+url.QueryEscape(tc.url), nil)
			req.Host = "example.com"
			newTestHandler().Proxy(rec, req)

			require.Equal(t, http.StatusFound, rec.Code)
			assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "http"))
		})
	}
}
