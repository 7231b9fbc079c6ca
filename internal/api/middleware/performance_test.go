package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func TestETag_NotModified(t *testing.T) {
	handler := ETag(jsonHandler(`{"trust":{"value":9}}`))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/trust-score?score=9", nil))
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/trust-score?score=9", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestCompression(t *testing.T) {
	body := strings.Repeat(`{"business_name":"Torque Bros"}`, 100)
	handler := Compression(jsonHandler(body))

	req := httptest.NewRequest(http.MethodGet, "/api/mechanics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, body, string(plain))
}

func TestResponseOptimization_LeavesStreamsAlone(t *testing.T) {
	handler := ResponseOptimization(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := w.(http.Flusher)
		assert.True(t, ok, "streams need a flushable writer")
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: connected\ndata: {}\n\n"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/stream", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Empty(t, w.Header().Get("ETag"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestCacheControl(t *testing.T) {
	tests := map[string]string{
		"/api/trust-score":      "public, max-age=3600",
		"/api/mechanics/search": "public, max-age=60, must-revalidate",
		"/api/mechanics/m1":     "public, max-age=120, must-revalidate",
		"/api/conversations":    "private, no-cache, must-revalidate",
	}
	for path, want := range tests {
		w := httptest.NewRecorder()
		CacheControl(jsonHandler(`{}`)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Header().Get("Cache-Control"), path)
	}
}
