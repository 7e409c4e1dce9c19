package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/concave-dev/prefq/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) health(t *testing.T, startTime time.Time) (int, HealthResponse) {
	t.Helper()
	e.router.GET("/health", HandleHealth("1.0.0", startTime, e.store, e.media))

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var response HealthResponse
	require.NoError(t, protocol.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

// TestHandleHealth tests the counters reported while a batch is rated
func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.submit(t, pair("a-b")).Code)
	require.Equal(t, http.StatusOK, env.submit(t, pair("c-d")).Code)
	require.NoError(t, env.store.Resolve("a-b", true))

	code, response := env.health(t, time.Now().Add(-30*time.Minute))

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.WithinDuration(t, time.Now(), response.Timestamp, 5*time.Second)
	assert.Equal(t, "30m0s", response.Uptime)
	assert.Equal(t, 1, response.Remaining)
	assert.Equal(t, 1, response.Ledger)
	assert.False(t, response.BatchReady)
	assert.True(t, response.MediaOnline)
	assert.Empty(t, response.Error)
}

// TestHandleHealthBatchReady tests that a complete batch is flagged
func TestHandleHealthBatchReady(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusOK, env.submit(t, pair("a-b")).Code)
	require.NoError(t, env.store.Resolve("a-b", false))

	code, response := env.health(t, time.Now())
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, response.Remaining)
	assert.True(t, response.BatchReady)
}

// TestHandleHealthDegraded tests the response when the media folder is gone
func TestHandleHealthDegraded(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, os.RemoveAll(env.media.Dir()))

	code, response := env.health(t, time.Now())
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, StatusDegraded, response.Status)
	assert.False(t, response.MediaOnline)
	assert.NotEmpty(t, response.Error)
}
