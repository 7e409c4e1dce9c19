package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func middlewareRouter(t *testing.T, middleware ...func(*Server) gin.HandlerFunc) (*gin.Engine, *Server) {
	t.Helper()
	cfg := testConfig(t)
	cfg.RateLimit = 1
	cfg.RateBurst = 2
	server, err := NewServer(cfg)
	require.NoError(t, err)

	router := gin.New()
	for _, m := range middleware {
		router.Use(m(server))
	}
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return router, server
}

// TestCORSMiddleware tests CORS header setting
func TestCORSMiddleware(t *testing.T) {
	router, _ := middlewareRouter(t, (*Server).corsMiddleware)

	tests := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{name: "GET request with CORS headers", method: http.MethodGet, expectedStatus: http.StatusOK},
		{name: "OPTIONS request should return 204", method: http.MethodOptions, expectedStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, "/test", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Range")
		})
	}
}

// TestRequestIDMiddleware tests generation and passthrough of request ids
func TestRequestIDMiddleware(t *testing.T) {
	router, _ := middlewareRouter(t, (*Server).requestIDMiddleware)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
}

// TestRateLimitMiddleware tests that bursts beyond the bucket get 429
func TestRateLimitMiddleware(t *testing.T) {
	router, _ := middlewareRouter(t, (*Server).rateLimitMiddleware)

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

// TestClientLimiterSweepsIdleClients tests lazy cleanup of idle buckets
func TestClientLimiterSweepsIdleClients(t *testing.T) {
	now := time.Now()
	l := newClientLimiter(1, 1)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
	assert.Equal(t, 2, l.size())

	now = now.Add(2 * limiterIdleTTL)
	assert.True(t, l.Allow("10.0.0.3"))
	assert.Equal(t, 1, l.size())
}
