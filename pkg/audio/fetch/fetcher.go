// ABOUTME: Byte retrieval for audio sources
// ABOUTME: Defines the Fetcher interface, NetworkError and scheme dispatch
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Fetcher retrieves the raw bytes named by a source identifier
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, source string) ([]byte, error)

// Fetch calls f(ctx, source)
func (f FetcherFunc) Fetch(ctx context.Context, source string) ([]byte, error) {
	return f(ctx, source)
}

// NetworkError reports a failed retrieval.
// Status carries the HTTP status code, or the closest equivalent for
// non-HTTP transports; it is zero when no response was received.
type NetworkError struct {
	Source string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		if e.Err != nil {
			return fmt.Sprintf("fetch %s: HTTP %d: %v", e.Source, e.Status, e.Err)
		}
		return fmt.Sprintf("fetch %s: HTTP %d", e.Source, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Mux routes http(s) sources to HTTP and everything else to File
type Mux struct {
	HTTP Fetcher
	File Fetcher
}

// NewMux creates a Mux with the default HTTP client and a File fetcher rooted at dir
func NewMux(dir string) *Mux {
	return &Mux{
		HTTP: NewHTTP(nil),
		File: &File{Root: dir},
	}
}

// Fetch dispatches on the source scheme
func (m *Mux) Fetch(ctx context.Context, source string) ([]byte, error) {
	if isHTTP(source) {
		return m.HTTP.Fetch(ctx, source)
	}

	u, err := url.Parse(source)
	if err == nil && u.Scheme == "file" {
		return m.File.Fetch(ctx, u.Path)
	}
	if err == nil && len(u.Scheme) > 1 {
		return nil, &NetworkError{Source: source, Status: http.StatusBadRequest, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	return m.File.Fetch(ctx, source)
}

func isHTTP(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
