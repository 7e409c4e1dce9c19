package api

import (
	"bytes"
	"context"
	"html"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/concave-dev/prefq/internal/auth"
	"github.com/concave-dev/prefq/internal/media"
	"github.com/concave-dev/prefq/internal/protocol"
	"github.com/concave-dev/prefq/internal/query"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ms, err := media.NewStore(filepath.Join(t.TempDir(), "videos"))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.BindAddr = "127.0.0.1"
	cfg.BindPort = 0
	cfg.Store = query.NewStore()
	cfg.Media = ms
	return cfg
}

func uploadBody(t *testing.T, id, sealed string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(protocol.FieldQueryID, protocol.EncodeQueryIDField(id))
	require.NoError(t, err)
	_, _ = part.Write([]byte("application/json"))

	for field, name := range map[string]string{protocol.FieldLeftVideo: "l.mp4", protocol.FieldRightVideo: "r.mp4"} {
		part, err = w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, _ = part.Write([]byte(field))
	}

	if sealed != "" {
		part, err = w.CreateFormFile(protocol.FieldPassword, protocol.EncodePasswordField(sealed))
		require.NoError(t, err)
		_, _ = part.Write([]byte("application/json"))
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func post(t *testing.T, h http.Handler, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/videos", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// TestNewServer tests construction and config validation
func TestNewServer(t *testing.T) {
	server, err := NewServer(testConfig(t))
	require.NoError(t, err)
	assert.NotNil(t, server.Handler())
	assert.Equal(t, "127.0.0.1:0", server.Addr())

	_, err = NewServer(nil)
	assert.Error(t, err)

	bad := testConfig(t)
	bad.Store = nil
	_, err = NewServer(bad)
	assert.Error(t, err)

	_, err = NewServerWithListener(testConfig(t), nil)
	assert.Error(t, err)
}

// TestServerRoutes tests that every route is wired
func TestServerRoutes(t *testing.T) {
	server, err := NewServer(testConfig(t))
	require.NoError(t, err)
	h := server.Handler()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		contains       string
	}{
		{name: "rater page without data", path: "/", expectedStatus: http.StatusOK, contains: "http-equiv=\"refresh\""},
		{name: "rater script", path: "/static/web_interface.js", expectedStatus: http.StatusOK, contains: "attachEventHandlers"},
		{name: "empty drain", path: "/feedback", expectedStatus: http.StatusOK, contains: "{}"},
		{name: "health", path: "/api/v1/health", expectedStatus: http.StatusOK, contains: "healthy"},
		{name: "stats", path: "/api/v1/stats", expectedStatus: http.StatusOK, contains: "remaining"},
		{name: "metrics", path: "/metrics", expectedStatus: http.StatusOK, contains: "prefq_"},
		{name: "unknown media", path: "/videos/x-left.mp4", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.contains != "" {
				assert.Contains(t, w.Body.String(), tt.contains)
			}
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}
}

// TestRaterPageRendersPair tests the embedded rater template
func TestRaterPageRendersPair(t *testing.T) {
	cfg := testConfig(t)
	server, err := NewServer(cfg)
	require.NoError(t, err)
	h := server.Handler()

	body, ct := uploadBody(t, "01-02", "")
	require.Equal(t, http.StatusOK, post(t, h, body, ct).Code)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()
	assert.Contains(t, page, `id="video_filename_left">01-02-left.mp4<`)
	assert.Contains(t, page, `id="video_filename_right">01-02-right.mp4<`)
	assert.Contains(t, page, `src="/videos/01-02-left.mp4"`)
	assert.Contains(t, page, "/static/web_interface.js")
}

// TestRaterPageMediaURLs tests that the page's video sources load for ids
// containing URL syntax
func TestRaterPageMediaURLs(t *testing.T) {
	srcPattern := regexp.MustCompile(`id="(left|right)_video" src="([^"]*)"`)

	for _, id := range []string{"plain-id", "a?b", "e%41f", "c#d", "sp ace", "x&y"} {
		t.Run(id, func(t *testing.T) {
			server, err := NewServer(testConfig(t))
			require.NoError(t, err)
			h := server.Handler()

			body, ct := uploadBody(t, id, "")
			require.Equal(t, http.StatusOK, post(t, h, body, ct).Code)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, w.Code)

			matches := srcPattern.FindAllStringSubmatch(w.Body.String(), -1)
			require.Len(t, matches, 2)

			// uploadBody writes each side's field name as the file content
			content := map[string]string{"left": protocol.FieldLeftVideo, "right": protocol.FieldRightVideo}
			for _, m := range matches {
				src := html.UnescapeString(m[2])
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, src, nil))
				require.Equal(t, http.StatusOK, w.Code, "GET %s", src)
				assert.Equal(t, content[m[1]], w.Body.String())
			}
		})
	}
}

// TestAuthRejectionLeavesNoTrace tests a wrong secret against real keys
func TestAuthRejectionLeavesNoTrace(t *testing.T) {
	pubPath, privPath, err := auth.WriteKeyPair(t.TempDir(), 2048)
	require.NoError(t, err)

	verifier, err := auth.NewVerifier(pubPath, privPath, "hunter2")
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Verifier = verifier
	server, err := NewServer(cfg)
	require.NoError(t, err)
	h := server.Handler()

	wrong, err := auth.NewCredentials(pubPath, "", "wrong password")
	require.NoError(t, err)
	sealed, err := wrong.Seal()
	require.NoError(t, err)

	body, ct := uploadBody(t, "a-b", sealed)
	w := post(t, h, body, ct)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, 0, cfg.Store.Pending())

	entries, err := os.ReadDir(cfg.Media.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The right secret is accepted and acknowledged
	right, err := auth.NewCredentials(pubPath, privPath, "hunter2")
	require.NoError(t, err)
	sealed, err = right.Seal()
	require.NoError(t, err)

	body, ct = uploadBody(t, "a-b", sealed)
	w = post(t, h, body, ct)
	require.Equal(t, http.StatusOK, w.Code)

	var resp protocol.SubmitResponse
	require.NoError(t, protocol.Unmarshal(w.Body.Bytes(), &resp))
	assert.NoError(t, right.ConfirmAck(resp.Password))
	assert.Equal(t, 1, cfg.Store.Pending())
}

// TestServeAndShutdown tests the listener lifecycle
func TestServeAndShutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server, err := NewServerWithListener(testConfig(t), listener)
	require.NoError(t, err)
	assert.Equal(t, listener.Addr().String(), server.Addr())

	done := make(chan error, 1)
	go func() { done <- server.Serve() }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + server.Addr() + "/api/v1/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	assert.NoError(t, <-done)
}
