// ABOUTME: WebSocket control server for the sound engine
// ABOUTME: Accepts play/pause/resume/stop commands and broadcasts instance state
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/harperreed/soundbox/internal/discovery"
	"github.com/harperreed/soundbox/internal/protocol"
	"github.com/harperreed/soundbox/internal/version"
	"github.com/harperreed/soundbox/pkg/audio"
	"github.com/harperreed/soundbox/pkg/soundengine"
)

const (
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
	sendBuffer    = 64
)

// Engine is the part of soundengine.Engine the server drives
type Engine interface {
	InitContext(ctx context.Context) error
	LoadSound(ctx context.Context, source string) (*audio.Buffer, error)
	Sound(ctx context.Context, source string, opts ...soundengine.Option) (string, error)
	Pause(id string) bool
	Resume(id string) bool
	Stop(id string) bool
	Snapshot() []soundengine.InstanceInfo
}

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
	Debug      bool
}

// Server exposes an Engine over a websocket
type Server struct {
	config   Config
	engine   Engine
	serverID string

	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server

	mdnsManager *discovery.Manager

	clients   map[string]*session
	clientsMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// session is one connected controller
type session struct {
	id       string
	conn     *websocket.Conn
	sendChan chan protocol.Message
	ctx      context.Context
	cancel   context.CancelFunc
	pending  sync.WaitGroup // in-flight load/play commands
}

// New creates a server for engine
func New(config Config, engine Engine) *Server {
	if config.Name == "" {
		config.Name = version.Product
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:   config,
		engine:   engine,
		serverID: uuid.New().String(),
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Intended for trusted local networks
				if origin := r.Header.Get("Origin"); origin != "" {
					log.Printf("Accepting control connection from origin: %s", origin)
				}
				return true
			},
		},
		clients: make(map[string]*session),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.mux.HandleFunc(protocol.Path, s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler serving the control endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ServerID returns the id reported in server/hello
func (s *Server) ServerID() string {
	return s.serverID
}

// Clients returns the number of connected controllers
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Start listens on the configured port and blocks until ctx is done or
// the listener fails
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(s.config.Port)))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts control connections on ln until ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log.Printf("Control server starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		port := s.config.Port
		if addr, ok := ln.Addr().(*net.TCPAddr); ok {
			port = addr.Port
		}
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        port,
		})
		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		}
	}

	s.httpServer = &http.Server{Handler: s.mux}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	log.Printf("Control websocket listening on %s%s", ln.Addr(), protocol.Path)

	var serverErr error
	select {
	case <-ctx.Done():
		log.Printf("Control server shutting down...")
	case err := <-errChan:
		log.Printf("HTTP server error: %v", err)
		serverErr = err
	}

	s.shutdown()

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

func (s *Server) shutdown() {
	s.cancel()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Hijacked websocket connections are not closed by Shutdown
	s.clientsMu.RLock()
	for _, sess := range s.clients {
		sess.conn.Close()
	}
	s.clientsMu.RUnlock()

	s.wg.Wait()
	log.Printf("Control server stopped cleanly")
}

// Broadcast pushes an instance state change to every connected controller
func (s *Server) Broadcast(info soundengine.InstanceInfo) {
	msg := protocol.Message{Type: protocol.TypeSoundState, Payload: toInstance(info)}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, sess := range s.clients {
		if err := s.send(sess, msg); err != nil && s.config.Debug {
			log.Printf("[DEBUG] Dropping state update for %s: %v", sess.id, err)
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New control connection from %s", r.RemoteAddr)

	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(conn)
}

func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(s.ctx)
	sess := &session{
		id:       uuid.New().String(),
		conn:     conn,
		sendChan: make(chan protocol.Message, sendBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}

	s.clientsMu.Lock()
	s.clients[sess.id] = sess
	s.clientsMu.Unlock()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.sessionWriter(sess)
	}()

	defer func() {
		sess.cancel()
		sess.pending.Wait()

		s.clientsMu.Lock()
		delete(s.clients, sess.id)
		close(sess.sendChan)
		s.clientsMu.Unlock()

		<-writerDone
		log.Printf("Control session closed: %s", sess.id)
	}()

	hello := protocol.ServerHello{
		ServerID:  s.serverID,
		SessionID: sess.id,
		Name:      s.config.Name,
		Version:   protocol.Version,
		Software:  version.Version,
	}
	if err := s.send(sess, protocol.Message{Type: protocol.TypeServerHello, Payload: hello}); err != nil {
		log.Printf("Error sending server hello: %v", err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		s.handleMessage(sess, data)
	}
}

// sessionWriter serializes writes to the connection
func (s *Server) sessionWriter(sess *session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sess.sendChan:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling message: %v", err)
				continue
			}
			sess.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := sess.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("Error writing message: %v", err)
				sess.conn.Close()
				// Drain so senders never block on a dead session
				for range sess.sendChan {
				}
				return
			}

		case <-ticker.C:
			if err := sess.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleMessage(sess *session, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		s.reply(sess, protocol.Result{Command: "", Error: "malformed message"})
		return
	}

	var cmd protocol.Command
	if err := env.Decode(&cmd); err != nil {
		s.reply(sess, protocol.Result{Command: env.Type, Error: fmt.Sprintf("invalid payload: %v", err)})
		return
	}

	if s.config.Debug {
		log.Printf("[DEBUG] %s: %s %+v", sess.id, env.Type, cmd)
	}

	switch env.Type {
	case protocol.TypeContextInit:
		s.reply(sess, result(env.Type, cmd, "", s.engine.InitContext(sess.ctx)))

	case protocol.TypeSoundLoad, protocol.TypeSoundPlay:
		// Loads may block on the network; keep reading meanwhile
		sess.pending.Add(1)
		go func() {
			defer sess.pending.Done()
			s.reply(sess, s.runLoad(sess.ctx, env.Type, cmd))
		}()

	case protocol.TypeSoundPause:
		s.reply(sess, boolResult(env.Type, cmd, s.engine.Pause(cmd.ID)))
	case protocol.TypeSoundResume:
		s.reply(sess, boolResult(env.Type, cmd, s.engine.Resume(cmd.ID)))
	case protocol.TypeSoundStop:
		s.reply(sess, boolResult(env.Type, cmd, s.engine.Stop(cmd.ID)))

	case protocol.TypeSoundList:
		snapshot := s.engine.Snapshot()
		instances := make([]protocol.Instance, 0, len(snapshot))
		for _, info := range snapshot {
			instances = append(instances, toInstance(info))
		}
		s.reply(sess, protocol.Result{Request: cmd.Request, Command: env.Type, OK: true, Instances: instances})

	default:
		log.Printf("Unknown message type: %s", env.Type)
		s.reply(sess, protocol.Result{Request: cmd.Request, Command: env.Type, Error: "unknown message type"})
	}
}

func (s *Server) runLoad(ctx context.Context, msgType string, cmd protocol.Command) protocol.Result {
	if cmd.Source == "" {
		return protocol.Result{Request: cmd.Request, Command: msgType, Error: "missing source"}
	}

	if msgType == protocol.TypeSoundLoad {
		_, err := s.engine.LoadSound(ctx, cmd.Source)
		return result(msgType, cmd, "", err)
	}

	opts := []soundengine.Option{
		soundengine.WithLoop(cmd.Loop),
		soundengine.WithID(cmd.ID),
	}
	if cmd.Volume != nil {
		opts = append(opts, soundengine.WithVolume(*cmd.Volume))
	}

	id, err := s.engine.Sound(ctx, cmd.Source, opts...)
	return result(msgType, cmd, id, err)
}

func (s *Server) reply(sess *session, res protocol.Result) {
	if err := s.send(sess, protocol.Message{Type: protocol.TypeSoundResult, Payload: res}); err != nil {
		log.Printf("Error sending result to %s: %v", sess.id, err)
	}
}

// send queues msg without blocking. Callers must not race with session close.
func (s *Server) send(sess *session, msg protocol.Message) error {
	select {
	case sess.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("session send buffer full")
	}
}

func result(msgType string, cmd protocol.Command, id string, err error) protocol.Result {
	res := protocol.Result{Request: cmd.Request, Command: msgType, OK: err == nil, ID: id}
	if err != nil {
		res.Error = err.Error()
		var netErr *soundengine.NetworkError
		if errors.As(err, &netErr) {
			res.Status = netErr.Status
		}
	}
	return res
}

func boolResult(msgType string, cmd protocol.Command, ok bool) protocol.Result {
	res := protocol.Result{Request: cmd.Request, Command: msgType, OK: ok, ID: cmd.ID}
	if !ok {
		res.Error = fmt.Sprintf("no instance %q in a state that allows %s", cmd.ID, msgType)
	}
	return res
}

func toInstance(info soundengine.InstanceInfo) protocol.Instance {
	return protocol.Instance{
		ID:       info.ID,
		Source:   info.Source,
		State:    info.State.String(),
		Loop:     info.Loop,
		Volume:   info.Volume,
		Position: info.Position,
		Duration: info.Duration,
	}
}
