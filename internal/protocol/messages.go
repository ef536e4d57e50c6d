// ABOUTME: Soundbox control protocol message type definitions
// ABOUTME: Defines the JSON envelope and payloads exchanged over the control websocket
package protocol

import "encoding/json"

// Protocol version reported in server/hello
const Version = 1

// Path is the HTTP path of the control websocket
const Path = "/soundbox"

// Client to server message types
const (
	TypeContextInit = "context/init"
	TypeSoundLoad   = "sound/load"
	TypeSoundPlay   = "sound/play"
	TypeSoundPause  = "sound/pause"
	TypeSoundResume = "sound/resume"
	TypeSoundStop   = "sound/stop"
	TypeSoundList   = "sound/list"
)

// Server to client message types
const (
	TypeServerHello = "server/hello"
	TypeSoundResult = "sound/result"
	TypeSoundState  = "sound/state"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Envelope is a received message with its payload left undecoded
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the payload into v. An absent payload leaves v untouched.
func (e Envelope) Decode(v interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}

// ServerHello is sent to every client on connect
type ServerHello struct {
	ServerID  string `json:"server_id"`
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
	Software  string `json:"software"`
}

// Command is the payload of every client message.
// Fields not used by a message type are ignored.
type Command struct {
	Request string   `json:"request,omitempty"` // echoed in the result
	Source  string   `json:"source,omitempty"`
	ID      string   `json:"id,omitempty"`
	Loop    bool     `json:"loop,omitempty"`
	Volume  *float64 `json:"volume,omitempty"` // nil keeps the default of 1.0
}

// Result answers one command
type Result struct {
	Request   string     `json:"request,omitempty"`
	Command   string     `json:"command"`
	OK        bool       `json:"ok"`
	ID        string     `json:"id,omitempty"`
	Error     string     `json:"error,omitempty"`
	Status    int        `json:"status,omitempty"`    // transport status for network failures
	Instances []Instance `json:"instances,omitempty"` // sound/list only
}

// Instance describes one playback instance
type Instance struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	State    string  `json:"state"`
	Loop     bool    `json:"loop"`
	Volume   float64 `json:"volume"`
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}
