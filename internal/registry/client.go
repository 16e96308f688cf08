package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tidwall/gjson"
)

// Settings configures the registry client from the environment.
type Settings struct {
	UserAgent string        `env:"VERCAST_USER_AGENT" envDefault:"vercast (https://github.com/fbkclanna/vercast)"`
	Timeout   time.Duration `env:"VERCAST_HTTP_TIMEOUT" envDefault:"30s"`
}

// LoadSettings reads Settings from environment variables.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// Client fetches published versions.
type Client struct {
	http      *http.Client
	userAgent string
}

// New creates a Client from settings.
func New(s Settings) *Client {
	return &Client{
		http:      &http.Client{Timeout: s.Timeout},
		userAgent: s.UserAgent,
	}
}

// DefaultVersionPath returns where the version lives in a response from url.
func DefaultVersionPath(url string) string {
	if strings.Contains(url, "crates.io") {
		return "version.num"
	}
	return "version"
}

// PublishedVersion requests url and returns the version found at
// versionPath in the JSON body. An empty versionPath picks the default for
// the registry.
func (c *Client) PublishedVersion(ctx context.Context, url, versionPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request to %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("reading response from %s: %w", url, err)
	}
	if resp.StatusCode >= 400 {
		return "", &StatusError{URL: url, Code: resp.StatusCode, Status: resp.Status}
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("response from %s is not JSON", url)
	}
	if errs := gjson.GetBytes(body, "errors"); errs.Exists() {
		return "", fmt.Errorf("request to %s returned errors: %s", url, errs.Raw)
	}

	if versionPath == "" {
		versionPath = DefaultVersionPath(url)
	}
	v := gjson.GetBytes(body, versionPath)
	if !v.Exists() {
		return "", fmt.Errorf("response from %s has no %s", url, versionPath)
	}
	return v.String(), nil
}

// StatusError is returned for responses with a 4xx or 5xx status.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s returned code %d: %s", e.URL, e.Code, e.Status)
}
