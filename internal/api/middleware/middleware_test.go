package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jroosing/minidns/internal/api/middleware"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something failed"})
	})
	return router
}

func serve(router http.Handler, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set(middleware.APIKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		sent     string
		want     int
	}{
		{"valid key", "test-secret", "test-secret", http.StatusOK},
		{"wrong key", "correct-key", "wrong-key", http.StatusUnauthorized},
		{"prefix of key", "correct-key", "correct", http.StatusUnauthorized},
		{"missing key", "expected-key", "", http.StatusUnauthorized},
		{"no key configured", "", "", http.StatusOK},
		{"no key configured, key sent", "", "some-key", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(newRouter(middleware.RequireAPIKey(tt.expected)), "/test", tt.sent)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestSlogRequestLogger_NilLogger(t *testing.T) {
	w := serve(newRouter(middleware.SlogRequestLogger(nil)), "/test", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestSlogRequestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	router := newRouter(middleware.SlogRequestLogger(logger))

	serve(router, "/test", "")
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), `msg="api request"`)
	assert.Contains(t, buf.String(), "path=/test")
	assert.Contains(t, buf.String(), "status=200")

	buf.Reset()
	serve(router, "/error", "")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status=500")
}

func TestMiddlewareChain(t *testing.T) {
	router := newRouter(middleware.SlogRequestLogger(nil), middleware.RequireAPIKey("secret"))

	assert.Equal(t, http.StatusOK, serve(router, "/test", "secret").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "/test", "").Code)
}
