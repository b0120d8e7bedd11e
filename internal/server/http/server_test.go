package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cfgpkg "github.com/rzbill/kvbind/internal/config"
	"github.com/rzbill/kvbind/internal/runtime"
	logpkg "github.com/rzbill/kvbind/pkg/log"
)

func newServer(t *testing.T) (*Server, *runtime.Runtime) {
	t.Helper()
	cfg := cfgpkg.Default()
	cfg.Fsync = "always"
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Config: cfg})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	return New(rt, logger), rt
}

func TestHealthHandler(t *testing.T) {
	s, rt := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("status: %d", w.Code)
	}

	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	w = httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status after close: %d", w.Code)
	}
}

func TestHealthFailureLogsRequestID(t *testing.T) {
	cfg := cfgpkg.Default()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Config: cfg})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	var buf bytes.Buffer
	logger := logpkg.NewLogger(logpkg.WithFormatter(&logpkg.TextFormatter{}), logpkg.WithOutput(logpkg.NewWriterOutput(&buf)))
	s := New(rt, logger)
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	req.Header.Set("X-Request-Id", "req-42")
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: %d", w.Code)
	}
	out := buf.String()
	for _, want := range []string{"health check failed", "request_id=req-42", "path=/v1/healthz", "component=http"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if s.srv.ErrorLog == nil {
		t.Fatalf("server error log should route through the logger")
	}
}

func TestInfoHandler(t *testing.T) {
	s, _ := newServer(t)
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/info", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	var resp infoResp
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Engine != "pebble" || resp.DataDir == "" {
		t.Fatalf("unexpected info: %+v", resp)
	}
}

func TestMetricsHandler(t *testing.T) {
	s, rt := newServer(t)
	if err := rt.DB().Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	w := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `kvbind_operations_total{engine="pebble",op="put"} 1`) {
		t.Fatalf("missing put counter in:\n%s", w.Body.String())
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s, _ := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("serve: %v", err)
	}
}
