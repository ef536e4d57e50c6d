// ABOUTME: Sound engine facade
// ABOUTME: Audio context lifecycle, playback registry and pause/resume/stop transitions
package soundengine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/harperreed/soundbox/pkg/audio"
	"github.com/harperreed/soundbox/pkg/audio/decode"
	"github.com/harperreed/soundbox/pkg/audio/fetch"
	"github.com/harperreed/soundbox/pkg/audio/output"
	"github.com/harperreed/soundbox/pkg/clock"
)

// Config holds engine configuration
type Config struct {
	// Fetcher retrieves source bytes (default: fetch.NewMux with unrestricted file access)
	Fetcher fetch.Fetcher

	// Decoders turns bytes into buffers (default: decode.DefaultRegistry)
	Decoders *decode.Registry

	// NewDevice opens the audio output on InitContext (default: oto at 48kHz stereo)
	NewDevice output.Factory

	// Debug enables verbose logging
	Debug bool

	// OnStateChange is called after an instance changes state
	OnStateChange func(InstanceInfo)

	// OnError is called when a load or start fails
	OnError func(error)
}

// Engine owns the audio context, the buffer cache and the playback registry
type Engine struct {
	config Config
	cache  *bufferCache

	// Serializes InitContext
	initMu sync.Mutex

	mu          sync.Mutex
	device      output.Device
	unsupported error
	instances   map[string]*instance
	pending     map[string]*pendingSounds // in-flight Sound requests per id
	generation  uint64
}

// New creates an engine. No device is opened until InitContext.
func New(config Config) *Engine {
	if config.Fetcher == nil {
		config.Fetcher = fetch.NewMux("")
	}
	if config.Decoders == nil {
		config.Decoders = decode.DefaultRegistry()
	}
	if config.NewDevice == nil {
		config.NewDevice = output.OtoFactory(output.OtoConfig{})
	}

	return &Engine{
		config:    config,
		cache:     newBufferCache(config.Fetcher, config.Decoders),
		instances: make(map[string]*instance),
		pending:   make(map[string]*pendingSounds),
	}
}

// InitContext creates the audio output on first call and resumes it when
// suspended. An unsupported platform is logged once and returned on every call.
func (e *Engine) InitContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.initMu.Lock()
	defer e.initMu.Unlock()

	e.mu.Lock()
	dev, unsupported := e.device, e.unsupported
	e.mu.Unlock()

	if unsupported != nil {
		return unsupported
	}

	if dev == nil {
		var err error
		dev, err = e.config.NewDevice()
		if err != nil {
			err = fmt.Errorf("failed to initialize audio output: %w", err)
			if errors.Is(err, ErrUnsupportedPlatform) {
				log.Printf("Audio playback disabled: %v", err)
				e.mu.Lock()
				e.unsupported = err
				e.mu.Unlock()
			}
			e.reportError(err)
			return err
		}

		e.mu.Lock()
		e.device = dev
		e.mu.Unlock()
		log.Printf("Audio context initialized")
	}

	if dev.State() == output.StateSuspended {
		e.debugf("Audio context suspended, requesting resume")
		if err := dev.Resume(); err != nil {
			return fmt.Errorf("failed to resume audio context: %w", err)
		}
	}
	return nil
}

// LoadSound returns the decoded buffer for source, fetching and decoding it
// on first use. Failures are not cached.
func (e *Engine) LoadSound(ctx context.Context, source string) (*audio.Buffer, error) {
	if !e.initialized() {
		log.Printf("Cannot load %s: %v", source, ErrContextNotInitialized)
		return nil, ErrContextNotInitialized
	}

	buf, err := e.cache.load(ctx, source)
	if err != nil {
		e.reportError(err)
		return nil, err
	}
	return buf, nil
}

// Preload warms the cache for every source and joins the failures
func (e *Engine) Preload(ctx context.Context, sources ...string) error {
	var errs []error
	for _, source := range sources {
		if _, err := e.LoadSound(ctx, source); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sound plays source and returns the instance id.
//
// A non-looping request stops any instance already registered under the id
// before loading. A looping request resumes a paused instance in place.
// When several calls for one id overlap, the latest to be issued wins. An
// earlier call that loaded successfully returns the id and is held in
// reserve: it plays only if every newer call fails.
func (e *Engine) Sound(ctx context.Context, source string, opts ...Option) (string, error) {
	o := defaultSoundOptions(source)
	for _, opt := range opts {
		opt(&o)
	}

	e.mu.Lock()
	if e.device == nil {
		e.mu.Unlock()
		log.Printf("Cannot play %s: %v", source, ErrContextNotInitialized)
		return "", ErrContextNotInitialized
	}

	var events []InstanceInfo
	if existing, ok := e.instances[o.id]; ok {
		if !o.loop {
			events = append(events, e.remove(existing, StateStopped))
		} else if existing.paused {
			err := e.start(existing, existing.offset)
			if err != nil {
				events = append(events, e.remove(existing, StateStopped))
			} else {
				events = append(events, existing.info(e.clock()))
			}
			e.mu.Unlock()
			e.notify(events)
			if err != nil {
				e.reportError(err)
				return "", err
			}
			e.debugf("Resumed paused %s in place", o.id)
			return o.id, nil
		}
	}

	p, ok := e.pending[o.id]
	if !ok {
		p = newPendingSounds()
		e.pending[o.id] = p
	}
	ticket := p.issue()
	e.mu.Unlock()
	e.notify(events)

	buf, err := e.cache.load(ctx, source)

	e.mu.Lock()
	p.resolve(ticket)
	if err == nil && e.device == nil {
		err = ErrContextNotInitialized
	}

	var started []InstanceInfo
	played := false
	if err == nil {
		req := &soundRequest{ticket: ticket, source: source, buffer: buf, opts: o}
		if p.superseded(ticket) {
			p.hold(req)
			e.debugf("Holding superseded request %d for %s", ticket, o.id)
		} else {
			started, err = e.register(p, req)
			played = err == nil
		}
	}
	held, heldErr := e.settle(o.id, p)
	e.mu.Unlock()

	e.notify(append(started, held...))
	if heldErr != nil {
		e.reportError(heldErr)
	}
	if err != nil {
		e.reportError(err)
		return "", err
	}
	if played {
		e.debugf("Playing %s as %s (loop=%v, volume=%.2f)", source, o.id, o.loop, o.volume)
	}
	return o.id, nil
}

// settle plays the held request once nothing newer can win, then forgets
// the id when no requests remain in flight. Caller holds e.mu.
func (e *Engine) settle(id string, p *pendingSounds) ([]InstanceInfo, error) {
	var events []InstanceInfo
	var err error
	if req := p.promote(); req != nil && e.device != nil {
		events, err = e.register(p, req)
		if err == nil {
			e.debugf("Playing held request %d for %s", req.ticket, id)
		}
	}
	if p.idle() {
		delete(e.pending, id)
	}
	return events, err
}

// register releases any instance under the request's id, then starts and
// registers a new one. Caller holds e.mu.
func (e *Engine) register(p *pendingSounds, req *soundRequest) ([]InstanceInfo, error) {
	p.played = req.ticket
	p.reserve = nil

	var events []InstanceInfo
	if prev, ok := e.instances[req.opts.id]; ok {
		events = append(events, e.remove(prev, StateStopped))
	}

	inst := &instance{
		id:     req.opts.id,
		source: req.source,
		buffer: req.buffer,
		volume: req.opts.volume,
		loop:   req.opts.loop,
		state:  StateStarting,
	}
	if err := e.start(inst, 0); err != nil {
		return events, err
	}
	e.instances[inst.id] = inst
	return append(events, inst.info(e.clock())), nil
}

// Pause records the current position and halts output.
// Returns false when id is unknown or already paused.
func (e *Engine) Pause(id string) bool {
	e.mu.Lock()
	inst, ok := e.lookup("pause", id)
	if !ok || inst.paused {
		e.mu.Unlock()
		return false
	}

	inst.offset = inst.elapsed(e.clock())
	inst.release()
	inst.paused = true
	inst.state = StatePaused
	info := inst.info(e.clock())
	e.mu.Unlock()

	e.notify([]InstanceInfo{info})
	return true
}

// Resume restarts a paused instance from its recorded position.
// Returns false when id is unknown or not paused.
func (e *Engine) Resume(id string) bool {
	e.mu.Lock()
	inst, ok := e.lookup("resume", id)
	if !ok || !inst.paused {
		e.mu.Unlock()
		return false
	}

	var info InstanceInfo
	err := e.start(inst, inst.offset)
	if err != nil {
		info = e.remove(inst, StateStopped)
	} else {
		info = inst.info(e.clock())
	}
	e.mu.Unlock()

	e.notify([]InstanceInfo{info})
	if err != nil {
		e.reportError(err)
		return false
	}
	return true
}

// Stop halts and releases the instance. Returns false when id is unknown.
func (e *Engine) Stop(id string) bool {
	e.mu.Lock()
	inst, ok := e.lookup("stop", id)
	if !ok {
		e.mu.Unlock()
		return false
	}
	info := e.remove(inst, StateStopped)
	e.mu.Unlock()

	e.notify([]InstanceInfo{info})
	return true
}

// StopAll stops every registered instance and returns how many there were
func (e *Engine) StopAll() int {
	e.mu.Lock()
	events := make([]InstanceInfo, 0, len(e.instances))
	for _, inst := range e.instances {
		events = append(events, e.remove(inst, StateStopped))
	}
	e.mu.Unlock()

	e.notify(events)
	return len(events)
}

// Position returns the current position of id within its buffer
func (e *Engine) Position(id string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[id]
	if !ok {
		return 0, false
	}
	return inst.position(e.clock()), true
}

// Snapshot lists registered instances sorted by id
func (e *Engine) Snapshot() []InstanceInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	infos := make([]InstanceInfo, 0, len(e.instances))
	for _, inst := range e.instances {
		infos = append(infos, inst.info(e.clock()))
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// Cached reports how many decoded buffers are held
func (e *Engine) Cached() int {
	return e.cache.len()
}

// Initialized reports whether InitContext has succeeded
func (e *Engine) Initialized() bool {
	return e.initialized()
}

// Close stops every instance and releases the audio output.
// InitContext may be called again afterwards.
func (e *Engine) Close() error {
	e.StopAll()

	e.mu.Lock()
	dev := e.device
	e.device = nil
	e.mu.Unlock()

	if dev == nil {
		return nil
	}
	if err := dev.Close(); err != nil {
		return fmt.Errorf("failed to close audio output: %w", err)
	}
	log.Printf("Audio context closed")
	return nil
}

// start runs the start transition. Caller holds e.mu.
func (e *Engine) start(inst *instance, offset float64) error {
	inst.release()

	e.generation++
	gen := e.generation
	id := inst.id

	voice, err := e.device.NewVoice(inst.buffer, output.VoiceConfig{
		Loop:   inst.loop,
		Volume: inst.volume,
		OnEnded: func() {
			e.ended(id, gen)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create voice for %s: %w", id, err)
	}

	inst.voice = voice
	inst.generation = gen
	inst.clockStart = e.device.CurrentTime()
	inst.offset = offset
	inst.paused = false

	if err := voice.Start(offset); err != nil {
		inst.release()
		return fmt.Errorf("failed to start %s: %w", id, err)
	}
	inst.state = StatePlaying
	return nil
}

// ended handles a natural-completion signal from the voice tagged gen
func (e *Engine) ended(id string, gen uint64) {
	e.mu.Lock()
	inst, ok := e.instances[id]
	if !ok || inst.generation != gen || inst.paused || inst.loop {
		e.mu.Unlock()
		e.debugf("Ignoring stale completion for %s", id)
		return
	}
	info := e.remove(inst, StateEnded)
	e.mu.Unlock()

	e.notify([]InstanceInfo{info})
	e.debugf("Finished %s", id)
}

// remove releases the voice and unregisters inst. Caller holds e.mu.
func (e *Engine) remove(inst *instance, state State) InstanceInfo {
	if !inst.paused && inst.state == StatePlaying && e.device != nil {
		inst.offset = inst.elapsed(e.clock())
	}
	inst.release()
	inst.state = state
	if current, ok := e.instances[inst.id]; ok && current == inst {
		delete(e.instances, inst.id)
	}
	return inst.info(e.clock())
}

// lookup finds a registered instance, logging why it could not. Caller holds e.mu.
func (e *Engine) lookup(op, id string) (*instance, bool) {
	if e.device == nil {
		log.Printf("Cannot %s %s: %v", op, id, ErrContextNotInitialized)
		return nil, false
	}
	inst, ok := e.instances[id]
	if !ok {
		e.debugf("Cannot %s %s: %v", op, id, ErrNotFound)
	}
	return inst, ok
}

// clock exposes the device time as a clock.Clock. Caller holds e.mu.
func (e *Engine) clock() clock.Clock {
	if e.device == nil {
		return clock.Func(func() float64 { return 0 })
	}
	return clock.Func(e.device.CurrentTime)
}

func (e *Engine) initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.device != nil
}

func (e *Engine) notify(events []InstanceInfo) {
	if e.config.OnStateChange == nil {
		return
	}
	for _, info := range events {
		e.config.OnStateChange(info)
	}
}

func (e *Engine) reportError(err error) {
	log.Printf("Sound engine error: %v", err)
	if e.config.OnError != nil {
		e.config.OnError(err)
	}
}

func (e *Engine) debugf(format string, args ...interface{}) {
	if e.config.Debug {
		log.Printf("[DEBUG] "+format, args...)
	}
}
