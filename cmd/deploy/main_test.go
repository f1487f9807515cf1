package main

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmarkhas/renderdeploy-go/internal/errors"
	"github.com/dmarkhas/renderdeploy-go/internal/logger"
	"github.com/dmarkhas/renderdeploy-go/internal/probe"
)

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func TestVerifyHealth(t *testing.T) {
	t.Parallel()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(healthy.Close)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	tests := []struct {
		name    string
		url     string
		strict  bool
		wantErr bool
	}{
		{"healthy lenient", healthy.URL, false, false},
		{"healthy strict", healthy.URL, true, false},
		{"unhealthy lenient passes", broken.URL, false, false},
		{"unhealthy strict fails", broken.URL, true, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := probe.New(time.Second)

			err := verifyHealth(context.Background(), p, tt.url, "/health", tt.strict, testLogger())
			if tt.wantErr {
				if !stderrors.Is(err, errors.ErrHealthCheckFailed) {
					t.Fatalf("expected ErrHealthCheckFailed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("verifyHealth failed: %v", err)
			}
		})
	}
}

func TestVerifyHealth_TrailingSlashURL(t *testing.T) {
	t.Parallel()
	var probedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := probe.New(time.Second)
	if err := verifyHealth(context.Background(), p, srv.URL+"/", "/health", true, testLogger()); err != nil {
		t.Fatalf("verifyHealth failed: %v", err)
	}
	if probedPath != "/health" {
		t.Errorf("probed %q, want /health", probedPath)
	}
}

func TestVerifyHealth_UnreachableLenientPasses(t *testing.T) {
	t.Parallel()
	p := probe.New(200 * time.Millisecond)

	if err := verifyHealth(context.Background(), p, "http://127.0.0.1:1", "/health", false, testLogger()); err != nil {
		t.Fatalf("unreachable service failed a lenient run: %v", err)
	}
}

func TestFirstLine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"single line", "single line"},
		{"first\nsecond", "first"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := firstLine(tt.in); got != tt.want {
			t.Errorf("firstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
