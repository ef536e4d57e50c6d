// ABOUTME: Error taxonomy for the sound engine
// ABOUTME: Sentinels plus aliases for the fetch and decode error types
package soundengine

import (
	"errors"

	"github.com/harperreed/soundbox/pkg/audio/decode"
	"github.com/harperreed/soundbox/pkg/audio/fetch"
	"github.com/harperreed/soundbox/pkg/audio/output"
)

var (
	// ErrContextNotInitialized is returned when an operation runs before InitContext
	ErrContextNotInitialized = errors.New("audio context not initialized")

	// ErrNotFound means no instance is registered under the id
	ErrNotFound = errors.New("sound instance not found")

	// ErrUnsupportedPlatform means the host has no audio output
	ErrUnsupportedPlatform = output.ErrUnsupportedPlatform
)

// NetworkError reports a failed byte retrieval, with the transport status
type NetworkError = fetch.NetworkError

// DecodeError reports malformed or unsupported audio data
type DecodeError = decode.DecodeError
