// ABOUTME: Tests for the decoder registry
// ABOUTME: Tests format sniffing, extension fallback and DecodeError reporting
package decode

import (
	"errors"
	"testing"

	"github.com/harperreed/soundbox/pkg/audio"
)

type stubDecoder struct {
	buf   *audio.Buffer
	err   error
	calls int
}

func (s *stubDecoder) Decode(data []byte) (*audio.Buffer, error) {
	s.calls++
	return s.buf, s.err
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"wav", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), FormatWAV},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), FormatFLAC},
		{"opus", append([]byte("OggS\x00\x02"), []byte("....OpusHead\x01\x02")...), FormatOpus},
		{"vorbis", append([]byte("OggS\x00\x02"), []byte("....\x01vorbis")...), FormatVorbis},
		{"unknown ogg", []byte("OggS\x00\x02 speex"), ""},
		{"mp3 id3", []byte("ID3\x04\x00"), FormatMP3},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, FormatMP3},
		{"text", []byte("hello world"), ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.expected {
				t.Errorf("Sniff() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestFormatFromExt(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"sfx/click.wav", FormatWAV},
		{"http://example.com/music/theme.MP3", FormatMP3},
		{"http://example.com/a.ogg?v=2", FormatVorbis},
		{"voice.opus", FormatOpus},
		{"song.flac", FormatFLAC},
		{"noext", ""},
	}

	for _, tt := range tests {
		if got := formatFromExt(tt.source); got != tt.expected {
			t.Errorf("formatFromExt(%q) = %q, expected %q", tt.source, got, tt.expected)
		}
	}
}

func TestRegistryUnknownFormat(t *testing.T) {
	reg := DefaultRegistry()

	_, err := reg.Decode("mystery.bin", []byte("not audio at all"))
	if err == nil {
		t.Fatal("expected error for unknown format")
	}

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if decErr.Source != "mystery.bin" {
		t.Errorf("expected source 'mystery.bin', got %q", decErr.Source)
	}
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestRegistryExtensionFallback(t *testing.T) {
	stub := &stubDecoder{buf: &audio.Buffer{
		Format:  audio.Format{SampleRate: 8000, Channels: 1, BitDepth: 16},
		Samples: []int32{1, 2, 3},
	}}

	reg := NewRegistry()
	reg.Register(FormatOpus, stub)

	buf, err := reg.Decode("voice.opus", []byte("no magic here"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("expected decoder to be called once, got %d", stub.calls)
	}
	if buf.Source != "voice.opus" {
		t.Errorf("expected source to be stamped, got %q", buf.Source)
	}
	if buf.Format.Codec != FormatOpus {
		t.Errorf("expected codec %q, got %q", FormatOpus, buf.Format.Codec)
	}
}

func TestRegistryMissingDecoder(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Decode("a.wav", []byte("RIFF\x24\x00\x00\x00WAVE"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestRegistryWrapsDecoderError(t *testing.T) {
	codecErr := errors.New("corrupt frame")
	reg := NewRegistry()
	reg.Register(FormatMP3, &stubDecoder{err: codecErr})

	_, err := reg.Decode("a.mp3", []byte("ID3...."))

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if decErr.Format != FormatMP3 {
		t.Errorf("expected format %q, got %q", FormatMP3, decErr.Format)
	}
	if !errors.Is(err, codecErr) {
		t.Error("expected codec error to be unwrappable")
	}
}

func TestRegistryRejectsEmptyBuffer(t *testing.T) {
	reg := NewRegistry()
	reg.Register(FormatMP3, &stubDecoder{buf: &audio.Buffer{
		Format: audio.Format{SampleRate: 44100, Channels: 2},
	}})

	_, err := reg.Decode("silence.mp3", []byte("ID3"))
	if !errors.Is(err, ErrNoFrames) {
		t.Fatalf("expected ErrNoFrames, got %v", err)
	}
}

func TestDecodeErrorMessage(t *testing.T) {
	err := &DecodeError{Source: "a.wav", Format: "wav", Err: errors.New("boom")}
	if err.Error() != "decode a.wav (wav): boom" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	err = &DecodeError{Source: "a.bin", Err: ErrUnknownFormat}
	if err.Error() != "decode a.bin: unrecognized audio format" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
