// ABOUTME: Sound engine library API
// ABOUTME: Caches decoded sounds and tracks pausable playback instances
// Package soundengine plays short sounds and music loops on the local audio
// output.
//
// An Engine owns three things:
//   - the audio context, opened by InitContext
//   - a buffer cache: each source is fetched and decoded once
//   - a registry of playback instances, at most one per id
//
// Instances are addressed by id, which defaults to the source. Playing a
// non-looping id again restarts it; a paused loop resumes in place.
//
// Example:
//
//	engine := soundengine.New(soundengine.Config{})
//	if err := engine.InitContext(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	id, err := engine.Sound(ctx, "sounds/theme.ogg",
//	    soundengine.WithLoop(true),
//	    soundengine.WithVolume(0.5),
//	    soundengine.WithID("bgm"))
//	engine.Pause(id)
//	engine.Resume(id)
//	engine.Stop(id)
package soundengine
