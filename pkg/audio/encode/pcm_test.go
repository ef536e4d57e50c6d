// ABOUTME: Unit tests for PCM encoder
// ABOUTME: Tests 16-bit and 24-bit PCM encoding
package encode

import (
	"encoding/binary"
	"testing"
)

func TestNewPCM(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		wantErr  bool
	}{
		{"16-bit", 16, false},
		{"24-bit", 24, false},
		{"8-bit", 8, true},
		{"32-bit", 32, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewPCM(tt.bitDepth)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if enc.BytesPerSample() != tt.bitDepth/8 {
				t.Errorf("expected %d bytes per sample, got %d", tt.bitDepth/8, enc.BytesPerSample())
			}
		})
	}
}

func TestEncode16Bit(t *testing.T) {
	enc, err := NewPCM(16)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}

	samples := []int32{1000 << 8, -1000 << 8, 0}
	data := enc.Encode(samples)

	if len(data) != 6 {
		t.Fatalf("expected 6 bytes, got %d", len(data))
	}

	expected := []int16{1000, -1000, 0}
	for i, want := range expected {
		got := int16(binary.LittleEndian.Uint16(data[i*2:]))
		if got != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, got)
		}
	}
}

func TestEncode24Bit(t *testing.T) {
	enc, err := NewPCM(24)
	if err != nil {
		t.Fatalf("failed to create encoder: %v", err)
	}

	data := enc.Encode([]int32{0x123456, -1})
	expected := []byte{0x56, 0x34, 0x12, 0xFF, 0xFF, 0xFF}

	if len(data) != len(expected) {
		t.Fatalf("expected %d bytes, got %d", len(expected), len(data))
	}
	for i := range expected {
		if data[i] != expected[i] {
			t.Errorf("byte %d: expected 0x%02x, got 0x%02x", i, expected[i], data[i])
		}
	}
}
