// ABOUTME: Audio output tests
// ABOUTME: Verifies PCM reader looping, seeking and device state names
package output

import (
	"io"
	"testing"
)

func TestOtoImplementsDevice(t *testing.T) {
	var _ Device = (*Oto)(nil)
	var _ Voice = (*otoVoice)(nil)
}

func TestPCMReaderEOF(t *testing.T) {
	r := &pcmReader{data: []byte{1, 2, 3, 4}}
	p := make([]byte, 8)

	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 bytes, got %d", n)
	}

	if _, err := r.Read(p); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestPCMReaderLoops(t *testing.T) {
	r := &pcmReader{data: []byte{1, 2, 3}, loop: true}
	p := make([]byte, 7)

	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 bytes, got %d", n)
	}

	expected := []byte{1, 2, 3, 1, 2, 3, 1}
	for i, b := range expected {
		if p[i] != b {
			t.Errorf("byte %d: expected %d, got %d", i, b, p[i])
		}
	}
}

func TestPCMReaderSeek(t *testing.T) {
	r := &pcmReader{data: []byte{1, 2, 3, 4}}

	pos, err := r.Seek(2, io.SeekStart)
	if err != nil || pos != 2 {
		t.Fatalf("seek start: pos=%d err=%v", pos, err)
	}

	p := make([]byte, 4)
	n, _ := r.Read(p)
	if n != 2 || p[0] != 3 {
		t.Errorf("expected to read from offset 2, got n=%d first=%d", n, p[0])
	}

	if _, err := r.Seek(-1, io.SeekStart); err == nil {
		t.Error("expected error for negative position")
	}

	pos, err = r.Seek(-1, io.SeekEnd)
	if err != nil || pos != 3 {
		t.Errorf("seek end: pos=%d err=%v", pos, err)
	}
}

func TestPCMReaderEmpty(t *testing.T) {
	r := &pcmReader{loop: true}
	if _, err := r.Read(make([]byte, 4)); err != io.EOF {
		t.Errorf("expected io.EOF for empty data, got %v", err)
	}
}

func TestVoiceByteOffset(t *testing.T) {
	// 10 frames of 16-bit stereo at 10Hz
	reader := &pcmReader{data: make([]byte, 40)}

	v := &otoVoice{reader: reader, frameBytes: 4, rate: 10}
	if got := v.byteOffset(0.5); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
	if got := v.byteOffset(5); got != 40 {
		t.Errorf("expected clamp to 40, got %d", got)
	}
	if got := v.byteOffset(-1); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}

	v.cfg.Loop = true
	if got := v.byteOffset(1.25); got != 8 {
		t.Errorf("expected wrapped offset 8, got %d", got)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateRunning, "running"},
		{StateSuspended, "suspended"},
		{StateClosed, "closed"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
