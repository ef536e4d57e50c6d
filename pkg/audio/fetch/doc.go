// ABOUTME: Audio source retrieval package
// ABOUTME: Fetches raw asset bytes from HTTP URLs or the local filesystem
// Package fetch retrieves raw audio bytes for a source identifier.
//
// Failures are reported as *NetworkError carrying the transport status so
// callers can decide whether retrying makes sense.
//
// Example:
//
//	f := fetch.NewMux("assets/audio")
//	data, err := f.Fetch(ctx, "https://cdn.example.com/sfx/click.wav")
//	var netErr *fetch.NetworkError
//	if errors.As(err, &netErr) && netErr.Status == http.StatusNotFound {
//	    log.Printf("missing asset")
//	}
package fetch
