package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPublishedVersion(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/npm/pkg-a":
			_, _ = w.Write([]byte(`{"name": "pkg-a", "version": "0.5.0"}`))
		case "/crates.io/api/v1/crates/core":
			_, _ = w.Write([]byte(`{"version": {"num": "1.2.3"}}`))
		case "/errors":
			_, _ = w.Write([]byte(`{"errors": [{"detail": "Not Found"}]}`))
		case "/html":
			_, _ = w.Write([]byte(`<html></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(Settings{UserAgent: "vercast-test", Timeout: 5 * time.Second})
	ctx := context.Background()

	v, err := c.PublishedVersion(ctx, srv.URL+"/npm/pkg-a", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "0.5.0" {
		t.Errorf("version = %q, want 0.5.0", v)
	}
	if gotAgent != "vercast-test" {
		t.Errorf("user agent = %q", gotAgent)
	}

	v, err = c.PublishedVersion(ctx, srv.URL+"/crates.io/api/v1/crates/core", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "1.2.3" {
		t.Errorf("crates version = %q, want 1.2.3", v)
	}

	v, err = c.PublishedVersion(ctx, srv.URL+"/npm/pkg-a", "name")
	if err != nil || v != "pkg-a" {
		t.Errorf("custom path = %q, %v", v, err)
	}

	_, err = c.PublishedVersion(ctx, srv.URL+"/missing", "")
	var status *StatusError
	if !errors.As(err, &status) || status.Code != http.StatusNotFound {
		t.Errorf("expected 404 StatusError, got %v", err)
	}

	for _, path := range []string{"/errors", "/html"} {
		if _, err := c.PublishedVersion(ctx, srv.URL+path, ""); err == nil {
			t.Errorf("%s: expected error", path)
		}
	}
}

func TestLoadSettings(t *testing.T) {
	t.Setenv("VERCAST_USER_AGENT", "custom")
	t.Setenv("VERCAST_HTTP_TIMEOUT", "2s")
	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.UserAgent != "custom" || s.Timeout != 2*time.Second {
		t.Errorf("settings = %+v", s)
	}
}

func TestLoadSettings_invalid(t *testing.T) {
	t.Setenv("VERCAST_HTTP_TIMEOUT", "soon")
	if _, err := LoadSettings(); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestDefaultVersionPath(t *testing.T) {
	if DefaultVersionPath("https://crates.io/api/v1/crates/x/1.0.0") != "version.num" {
		t.Error("crates.io should read version.num")
	}
	if DefaultVersionPath("https://registry.npmjs.com/x/1.0.0") != "version" {
		t.Error("npm should read version")
	}
}
