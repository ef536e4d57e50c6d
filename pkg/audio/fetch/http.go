// ABOUTME: HTTP fetcher for remote audio sources
// ABOUTME: Downloads asset bytes and maps non-2xx responses to NetworkError
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
)

// HTTP fetches sources over http and https
type HTTP struct {
	client *http.Client
}

// NewHTTP creates an HTTP fetcher; a nil client uses http.DefaultClient
func NewHTTP(client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{client: client}
}

// Fetch downloads the source
func (h *HTTP) Fetch(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &NetworkError{Source: source, Err: fmt.Errorf("invalid request: %w", err)}
	}

	log.Printf("Downloading audio: %s", source)
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{Source: source, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Source: source, Status: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	log.Printf("Downloaded %s (%d bytes)", source, len(data))
	return data, nil
}
