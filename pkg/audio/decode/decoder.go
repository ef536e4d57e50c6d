// ABOUTME: Decoder interface definition and format registry
// ABOUTME: Sniffs container formats and dispatches to the matching decoder
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harperreed/soundbox/pkg/audio"
)

// Format keys used by the registry
const (
	FormatWAV    = "wav"
	FormatMP3    = "mp3"
	FormatFLAC   = "flac"
	FormatVorbis = "vorbis"
	FormatOpus   = "opus"
)

var (
	ErrUnknownFormat = errors.New("unrecognized audio format")
	ErrNoFrames      = errors.New("no audio frames decoded")
)

// Decoder decodes a complete encoded file into a playable buffer
type Decoder interface {
	Decode(data []byte) (*audio.Buffer, error)
}

// DecodeError reports malformed or unsupported audio data
type DecodeError struct {
	Source string
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("decode %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("decode %s (%s): %v", e.Source, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Registry maps format keys to decoders
type Registry struct {
	codecs map[string]Decoder
	mu     sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
	}
}

// DefaultRegistry returns a registry with every built-in decoder registered
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(FormatWAV, WAV{})
	r.Register(FormatMP3, MP3{})
	r.Register(FormatFLAC, FLAC{})
	r.Register(FormatVorbis, Vorbis{})
	r.Register(FormatOpus, Opus{})
	return r
}

// Register adds or replaces the decoder for a format
func (r *Registry) Register(format string, d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[format] = d
}

// Get returns the decoder registered for a format
func (r *Registry) Get(format string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.codecs[format]
	return d, ok
}

// Decode detects the format of data and decodes it.
// Content sniffing wins; the source extension is only a fallback.
// Every failure is returned as a *DecodeError.
func (r *Registry) Decode(source string, data []byte) (*audio.Buffer, error) {
	format := Sniff(data)
	if format == "" {
		format = formatFromExt(source)
	}
	if format == "" {
		return nil, &DecodeError{Source: source, Err: ErrUnknownFormat}
	}

	dec, ok := r.Get(format)
	if !ok {
		return nil, &DecodeError{Source: source, Format: format, Err: fmt.Errorf("no decoder registered: %w", ErrUnknownFormat)}
	}

	buf, err := dec.Decode(data)
	if err != nil {
		return nil, &DecodeError{Source: source, Format: format, Err: err}
	}
	if buf.Frames() == 0 {
		return nil, &DecodeError{Source: source, Format: format, Err: ErrNoFrames}
	}
	if err := buf.Validate(); err != nil {
		return nil, &DecodeError{Source: source, Format: format, Err: err}
	}

	buf.Source = source
	buf.Format.Codec = format
	return buf, nil
}

// Sniff identifies the container from its magic bytes
func Sniff(data []byte) string {
	switch {
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return FormatWAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return FormatFLAC
	case bytes.HasPrefix(data, []byte("OggS")):
		// The first page carries the codec identification header
		head := data[:min(len(data), 128)]
		if bytes.Contains(head, []byte("OpusHead")) {
			return FormatOpus
		}
		if bytes.Contains(head, []byte("\x01vorbis")) {
			return FormatVorbis
		}
		return ""
	case bytes.HasPrefix(data, []byte("ID3")):
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return ""
}

func formatFromExt(source string) string {
	// Strip query string from URLs
	source = strings.Split(source, "?")[0]

	switch strings.ToLower(filepath.Ext(source)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".mp3":
		return FormatMP3
	case ".flac":
		return FormatFLAC
	case ".ogg", ".oga":
		return FormatVorbis
	case ".opus":
		return FormatOpus
	}
	return ""
}
