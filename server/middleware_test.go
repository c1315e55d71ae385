package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"legalmitra-backend/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func request(r http.Handler, method, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/ping", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerClient(t *testing.T) {
	r := newTestRouter(rateLimitMiddleware(newClientLimiter(2, time.Minute)))

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "10.0.0.1").Code)

	w := request(r, http.MethodGet, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	// another client has its own bucket
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "10.0.0.2").Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(corsMiddleware())

	w := request(r, http.MethodOptions, "10.0.0.1")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = request(r, http.MethodGet, "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestLoggingMiddlewarePassesThrough(t *testing.T) {
	r := newTestRouter(loggingMiddleware(logger.NewNop()))

	w := request(r, http.MethodGet, "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
}
