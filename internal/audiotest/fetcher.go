// ABOUTME: Counting in-memory fetcher for engine tests
// ABOUTME: Serves canned bytes, counts calls and can hold requests at a gate
package audiotest

import (
	"context"
	"net/http"
	"sync"

	"github.com/harperreed/soundbox/pkg/audio/fetch"
)

// Fetcher serves registered sources from memory
type Fetcher struct {
	mu     sync.Mutex
	files  map[string][]byte
	errs   map[string]error
	calls  map[string]int
	gate   chan struct{}
	active int
}

// NewFetcher creates an empty fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		files: make(map[string][]byte),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

// Add registers data under source
func (f *Fetcher) Add(source string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[source] = data
	delete(f.errs, source)
}

// Fail makes every fetch of source return err
func (f *Fetcher) Fail(source string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[source] = err
}

// Hold blocks fetches until the returned release function is called
func (f *Fetcher) Hold() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.gate = nil
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Calls reports how many times source was fetched
func (f *Fetcher) Calls(source string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[source]
}

// Waiting reports how many fetches are blocked at the gate
func (f *Fetcher) Waiting() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Fetch implements fetch.Fetcher
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	f.mu.Lock()
	f.calls[source]++
	gate := f.gate
	if gate != nil {
		f.active++
	}
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
		if err := ctx.Err(); err != nil {
			return nil, &fetch.NetworkError{Source: source, Err: err}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.errs[source]; ok {
		return nil, err
	}
	data, ok := f.files[source]
	if !ok {
		return nil, &fetch.NetworkError{Source: source, Status: http.StatusNotFound}
	}
	return data, nil
}
