package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCORSRouter(origins ...string) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), CORSMiddleware(origins), SecurityMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func serve(r *gin.Engine, method, origin string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("any origin", func(t *testing.T) {
		w := serve(newCORSRouter(), http.MethodGet, "https://app.example.com")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allowed origin", func(t *testing.T) {
		w := serve(newCORSRouter("https://app.example.com"), http.MethodGet, "https://app.example.com")
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("foreign origin gets no cors headers", func(t *testing.T) {
		w := serve(newCORSRouter("https://app.example.com"), http.MethodGet, "https://evil.example.com")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		r := newCORSRouter("https://app.example.com")
		assert.Equal(t, http.StatusNoContent, serve(r, http.MethodOptions, "https://app.example.com").Code)
		assert.Equal(t, http.StatusForbidden, serve(r, http.MethodOptions, "https://evil.example.com").Code)
	})
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	r := newCORSRouter()

	w := serve(r, http.MethodGet, "", "X-Request-ID", "req-123")
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = serve(r, http.MethodGet, "")
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}
