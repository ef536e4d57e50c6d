// ABOUTME: Decoded buffer cache keyed by source identifier
// ABOUTME: Coalesces concurrent misses so each source is fetched and decoded once
package soundengine

import (
	"context"
	"log"
	"sync"

	"github.com/harperreed/soundbox/pkg/audio"
	"github.com/harperreed/soundbox/pkg/audio/decode"
	"github.com/harperreed/soundbox/pkg/audio/fetch"
	"golang.org/x/sync/singleflight"
)

// bufferCache never evicts; failures are not stored
type bufferCache struct {
	fetcher  fetch.Fetcher
	decoders *decode.Registry

	mu      sync.RWMutex
	buffers map[string]*audio.Buffer
	group   singleflight.Group
}

func newBufferCache(fetcher fetch.Fetcher, decoders *decode.Registry) *bufferCache {
	return &bufferCache{
		fetcher:  fetcher,
		decoders: decoders,
		buffers:  make(map[string]*audio.Buffer),
	}
}

func (c *bufferCache) get(source string) (*audio.Buffer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	buf, ok := c.buffers[source]
	return buf, ok
}

func (c *bufferCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.buffers)
}

// load returns the cached buffer or fetches and decodes it.
// The shared fetch outlives any single caller; ctx only bounds the wait.
func (c *bufferCache) load(ctx context.Context, source string) (*audio.Buffer, error) {
	if buf, ok := c.get(source); ok {
		return buf, nil
	}

	ch := c.group.DoChan(source, func() (interface{}, error) {
		if buf, ok := c.get(source); ok {
			return buf, nil
		}

		data, err := c.fetcher.Fetch(context.WithoutCancel(ctx), source)
		if err != nil {
			return nil, err
		}

		buf, err := c.decoders.Decode(source, data)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.buffers[source] = buf
		c.mu.Unlock()

		log.Printf("Loaded %s: %s %dHz %dch, %.2fs", source, buf.Format.Codec,
			buf.Format.SampleRate, buf.Format.Channels, buf.Duration())
		return buf, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*audio.Buffer), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
