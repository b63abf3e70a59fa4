package httpserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/aora/backend/internal/config"
)

func TestNewAppliesTimeouts(t *testing.T) {
	srv := New(8080, http.NotFoundHandler(), config.HTTPConfig{ReadHeaderTimeout: time.Second, WriteTimeout: 3 * time.Second})
	if srv.Addr() != ":8080" {
		t.Fatalf("unexpected addr %q", srv.Addr())
	}
	if srv.inner.ReadHeaderTimeout != time.Second || srv.inner.WriteTimeout != 3*time.Second {
		t.Fatalf("unexpected timeouts %v %v", srv.inner.ReadHeaderTimeout, srv.inner.WriteTimeout)
	}

	defaults := New(0, http.NotFoundHandler(), config.HTTPConfig{})
	if defaults.inner.ReadHeaderTimeout <= 0 || defaults.inner.WriteTimeout <= 0 {
		t.Fatal("expected default timeouts")
	}
}

func TestServeAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	srv := New(0, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}), config.HTTPConfig{})

	done := make(chan error, 1)
	go func() { done <- srv.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("unexpected body %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}
