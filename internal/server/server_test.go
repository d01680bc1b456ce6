package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 0)

	rr := env.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestReady(t *testing.T) {
	env := newTestEnv(t, 0)

	rr := env.do(http.MethodGet, "/ready", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeBody[readiness](t, rr)
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, ComponentStatusUp, resp.Components["storage"].Status)

	env.files.pingErr = errors.New("dial tcp: connection refused")
	rr = env.do(http.MethodGet, "/ready", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	resp = decodeBody[readiness](t, rr)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, ComponentStatusDown, resp.Components["storage"].Status)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t, 0)

	rr := env.do(http.MethodGet, "/health", nil, "")
	assert.Len(t, rr.Header().Get("X-Request-Id"), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("x", 500))
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Len(t, rr.Header().Get("X-Request-Id"), 36)
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, 0)

	rr := env.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rr.Header().Get("Referrer-Policy"))
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/delete/abc", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	srv := New(Config{Users: nil, Files: newMemFiles(), CORSOrigins: []string{"https://notes.example.com"}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://notes.example.com")
	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "https://notes.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, 0)

	env.do(http.MethodGet, "/files?subject=none", nil, "")
	rr := env.upload(t, "math", "notes.pdf", "application/pdf", []byte("pdf"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `notesbuzz_http_requests_total{code="404",method="GET"} 1`)
	assert.Contains(t, body, "notesbuzz_uploads_total 1")
	assert.Contains(t, body, "notesbuzz_upload_bytes_total 3")
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, 0)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/nope", nil, "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, env.do(http.MethodGet, "/upload", nil, "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, env.do(http.MethodPost, "/delete/x", nil, "").Code)
}

// TestAliceFlow walks one user through every route.
func TestAliceFlow(t *testing.T) {
	env := newTestEnv(t, 0)

	rr := env.postJSON("/auth/signup", signupReq{Username: "alice", Email: "a@x.io", Password: "secret1"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.postJSON("/auth/login", loginReq{Username: "alice", Password: "secret1"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.upload(t, "math", "notes.pdf", "application/pdf", []byte("%PDF-1.4 alice"))
	require.Equal(t, http.StatusOK, rr.Code)
	up := decodeBody[uploadResp](t, rr)
	assert.Equal(t, "math-notes.pdf", up.Filename)

	rr = env.do(http.MethodGet, "/files?subject=math", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"filename":"math-notes.pdf"`)

	rr = env.do(http.MethodGet, "/file/"+up.ID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "%PDF-1.4 alice", rr.Body.String())

	rr = env.do(http.MethodDelete, "/delete/"+up.ID, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(http.MethodGet, "/file/"+up.ID, nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
