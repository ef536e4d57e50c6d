// ABOUTME: Functional options for Engine.Sound
// ABOUTME: Loop flag, volume and instance id with their defaults
package soundengine

// Option configures a Sound call
type Option func(*soundOptions)

type soundOptions struct {
	loop   bool
	volume float64
	id     string
}

func defaultSoundOptions(source string) soundOptions {
	return soundOptions{
		loop:   false,
		volume: 1.0,
		id:     source,
	}
}

// WithLoop makes the instance loop until stopped
func WithLoop(loop bool) Option {
	return func(o *soundOptions) {
		o.loop = loop
	}
}

// WithVolume sets the linear gain. The value is not clamped.
func WithVolume(volume float64) Option {
	return func(o *soundOptions) {
		o.volume = volume
	}
}

// WithID registers the instance under id instead of the source.
// An empty id keeps the default.
func WithID(id string) Option {
	return func(o *soundOptions) {
		if id != "" {
			o.id = id
		}
	}
}
