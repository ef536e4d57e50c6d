// ABOUTME: Audio encoder package for packing PCM for output devices
// ABOUTME: Provides the PCM encoder used when handing buffers to a device
// Package encode packs int32 samples (24-bit range) into little-endian PCM
// bytes at 16 or 24 bits per sample.
//
// Example:
//
//	enc, err := encode.NewPCM(16)
//	data := enc.Encode(buf.Samples)
package encode
