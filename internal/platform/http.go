package platform

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPLoader hands out a Bus once the platform endpoint answers with 2xx.
// An empty URL always succeeds.
type HTTPLoader struct {
	URL    string
	Client *http.Client
}

// NewHTTPLoader creates an HTTPLoader probing url.
func NewHTTPLoader(url string, timeout time.Duration) *HTTPLoader {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPLoader{URL: url, Client: &http.Client{Timeout: timeout}}
}

// Create probes the platform URL and returns a fresh Bus.
func (l *HTTPLoader) Create(ctx context.Context) (API, error) {
	if l.URL == "" {
		return NewBus(), nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building platform probe: %w", err)
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("platform api not available: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("platform api not available: status %d", resp.StatusCode)
	}
	return NewBus(), nil
}
