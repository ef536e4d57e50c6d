// ABOUTME: WebSocket client for the soundbox control protocol
// ABOUTME: Handles connection, handshake and request/result correlation
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harperreed/soundbox/internal/protocol"
)

// Config holds client configuration
type Config struct {
	ServerAddr string // host:port
	Path       string // default protocol.Path
}

// Client is a controller connection to a soundbox server
type Client struct {
	config Config
	conn   *websocket.Conn

	mu        sync.RWMutex
	connected bool
	hello     protocol.ServerHello

	// Serializes writes; gorilla allows one concurrent writer
	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan protocol.Result
	nextReq   uint64

	// States receives instance state broadcasts. Updates are dropped when
	// nobody is reading.
	States chan protocol.Instance

	ctx    context.Context
	cancel context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	if config.Path == "" {
		config.Path = protocol.Path
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:  config,
		pending: make(map[string]chan protocol.Result),
		States:  make(chan protocol.Instance, 32),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect dials the server and waits for server/hello
func (c *Client) Connect(ctx context.Context) error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		conn.Close()
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}
	if env.Type != protocol.TypeServerHello {
		conn.Close()
		return fmt.Errorf("expected %s, got %s", protocol.TypeServerHello, env.Type)
	}

	var hello protocol.ServerHello
	if err := env.Decode(&hello); err != nil {
		conn.Close()
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.hello = hello
	c.mu.Unlock()

	log.Printf("Connected to %s (session %s)", hello.Name, hello.SessionID)

	go c.readMessages()
	return nil
}

// Hello returns the server/hello received on connect
func (c *Client) Hello() protocol.ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hello
}

// Do sends a command and waits for its result
func (c *Client) Do(ctx context.Context, msgType string, cmd protocol.Command) (protocol.Result, error) {
	c.pendingMu.Lock()
	if cmd.Request == "" {
		c.nextReq++
		cmd.Request = "r" + strconv.FormatUint(c.nextReq, 10)
	}
	ch := make(chan protocol.Result, 1)
	c.pending[cmd.Request] = ch
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, cmd.Request)
		c.pendingMu.Unlock()
	}()

	if err := c.sendJSON(protocol.Message{Type: msgType, Payload: cmd}); err != nil {
		return protocol.Result{}, err
	}

	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return protocol.Result{}, ctx.Err()
	case <-c.ctx.Done():
		return protocol.Result{}, fmt.Errorf("connection closed")
	}
}

// Init asks the server to initialize its audio context
func (c *Client) Init(ctx context.Context) (protocol.Result, error) {
	return c.Do(ctx, protocol.TypeContextInit, protocol.Command{})
}

// Load warms the server cache for source
func (c *Client) Load(ctx context.Context, source string) (protocol.Result, error) {
	return c.Do(ctx, protocol.TypeSoundLoad, protocol.Command{Source: source})
}

// Play starts source. An empty id defaults to the source; nil volume to 1.0.
func (c *Client) Play(ctx context.Context, source string, loop bool, volume *float64, id string) (protocol.Result, error) {
	return c.Do(ctx, protocol.TypeSoundPlay, protocol.Command{Source: source, Loop: loop, Volume: volume, ID: id})
}

// Pause pauses instance id
func (c *Client) Pause(ctx context.Context, id string) (protocol.Result, error) {
	return c.Do(ctx, protocol.TypeSoundPause, protocol.Command{ID: id})
}

// Resume resumes instance id
func (c *Client) Resume(ctx context.Context, id string) (protocol.Result, error) {
	return c.Do(ctx, protocol.TypeSoundResume, protocol.Command{ID: id})
}

// Stop stops instance id
func (c *Client) Stop(ctx context.Context, id string) (protocol.Result, error) {
	return c.Do(ctx, protocol.TypeSoundStop, protocol.Command{ID: id})
}

// List returns the server's registered instances
func (c *Client) List(ctx context.Context) ([]protocol.Instance, error) {
	res, err := c.Do(ctx, protocol.TypeSoundList, protocol.Command{})
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("list failed: %s", res.Error)
	}
	return res.Instances, nil
}

func (c *Client) sendJSON(msg protocol.Message) error {
	c.mu.RLock()
	conn, connected := c.conn, c.connected
	c.mu.RUnlock()

	if !connected {
		return fmt.Errorf("not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				log.Printf("Read error: %v", err)
			}
			return
		}

		c.handleJSONMessage(data)
	}
}

func (c *Client) handleJSONMessage(data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	switch env.Type {
	case protocol.TypeSoundResult:
		var res protocol.Result
		if err := env.Decode(&res); err != nil {
			log.Printf("Failed to parse result: %v", err)
			return
		}
		c.pendingMu.Lock()
		ch, ok := c.pending[res.Request]
		c.pendingMu.Unlock()
		if !ok {
			log.Printf("Result for unknown request %q (%s)", res.Request, res.Command)
			return
		}
		ch <- res

	case protocol.TypeSoundState:
		var inst protocol.Instance
		if err := env.Decode(&inst); err != nil {
			log.Printf("Failed to parse state: %v", err)
			return
		}
		select {
		case c.States <- inst:
		default:
		}

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
