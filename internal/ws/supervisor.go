package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bitbybit/go-battleship/internal/dependencies/random"
)

const (
	// ConnIDLength is the length of generated connection ids
	ConnIDLength = 16
	// ConnIDAlphabet is the characters used in connection ids
	ConnIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultPingInterval is the heartbeat sweep period
	DefaultPingInterval = 30 * time.Second
	// DefaultShutdownGrace is how long clients get to close on their own
	// after the shutdown close frame
	DefaultShutdownGrace = 100 * time.Millisecond

	// sendBufferSize is the per-connection outbound queue length
	sendBufferSize = 256

	writeWait = 10 * time.Second
)

// Dispatcher consumes inbound frames from live connections
type Dispatcher interface {
	Dispatch(ctx context.Context, raw []byte, connID string)
}

// SessionDetacher releases a connection's player binding when it closes
type SessionDetacher interface {
	Detach(connID string)
}

// Config holds supervisor tuning
type Config struct {
	PingInterval  time.Duration
	ShutdownGrace time.Duration
}

// DefaultConfig returns the standard heartbeat settings
func DefaultConfig() Config {
	return Config{
		PingInterval:  DefaultPingInterval,
		ShutdownGrace: DefaultShutdownGrace,
	}
}

// Supervisor accepts websocket connections, assigns each an identity,
// runs the heartbeat protocol, and fans outbound messages to clients.
type Supervisor struct {
	dispatcher Dispatcher
	sessions   SessionDetacher
	random     random.Random
	logger     *slog.Logger
	cfg        Config
	upgrader   websocket.Upgrader

	mu       sync.RWMutex
	conns    map[string]*conn
	draining bool

	done chan struct{}
	wg   sync.WaitGroup
}

// conn is one supervised connection. alive is the liveness flag of the
// heartbeat protocol: the sweep marks it suspect, only a pong restores it.
type conn struct {
	id   string
	sock *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	alive  bool
	closed bool
}

func (c *conn) setAlive(alive bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = alive
}

func (c *conn) isAlive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

// enqueue queues one outbound message. The closed flag and the channel
// close are serialized under the conn mutex, so a concurrent close can
// never turn this into a send on a closed channel.
func (c *conn) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *conn) close() {
	c.mu.Lock()
	alreadyClosed := c.closed
	c.closed = true
	if !alreadyClosed {
		close(c.send)
	}
	c.mu.Unlock()

	if !alreadyClosed {
		_ = c.sock.Close()
	}
}

// New creates a Supervisor and starts its heartbeat loop
func New(dispatcher Dispatcher, sessions SessionDetacher, rnd random.Random, cfg Config, logger *slog.Logger) *Supervisor {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultPingInterval
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = DefaultShutdownGrace
	}

	s := &Supervisor{
		dispatcher: dispatcher,
		sessions:   sessions,
		random:     rnd,
		logger:     logger,
		cfg:        cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The bundled client connects from the sibling static
				// origin; cross-origin games are expected.
				return true
			},
		},
		conns: make(map[string]*conn),
		done:  make(chan struct{}),
	}

	s.wg.Add(1)
	go s.heartbeat()

	return s
}

// ServeHTTP upgrades a request into a supervised connection
func (s *Supervisor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	draining := s.draining
	s.mu.RUnlock()
	if draining {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &conn{
		id:    s.random.String(ConnIDLength, ConnIDAlphabet),
		sock:  sock,
		send:  make(chan []byte, sendBufferSize),
		alive: true,
	}

	sock.SetPongHandler(func(string) error {
		c.setAlive(true)
		return nil
	})

	s.mu.Lock()
	s.conns[c.id] = c
	total := len(s.conns)
	s.mu.Unlock()

	s.logger.Info("connection accepted",
		slog.String("conn_id", c.id),
		slog.Int("total_conns", total),
	)

	go s.writePump(c)
	go s.readPump(c)
}

// readPump feeds inbound frames to the dispatcher until the connection dies
func (s *Supervisor) readPump(c *conn) {
	defer s.drop(c)

	for {
		_, raw, err := c.sock.ReadMessage()
		if err != nil {
			return
		}
		s.dispatcher.Dispatch(context.Background(), raw, c.id)
	}
}

// writePump drains the outbound queue onto the socket
func (s *Supervisor) writePump(c *conn) {
	for data := range c.send {
		_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// heartbeat runs the liveness sweep: every tick, connections still
// suspect from the previous tick are terminated; the rest are marked
// suspect and pinged. Only a pong restores the flag.
func (s *Supervisor) heartbeat() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			for _, c := range s.snapshot() {
				if !c.isAlive() {
					s.logger.Info("terminating unresponsive connection",
						slog.String("conn_id", c.id),
					)
					s.drop(c)
					continue
				}
				c.setAlive(false)
				deadline := time.Now().Add(writeWait)
				_ = c.sock.WriteControl(websocket.PingMessage, nil, deadline)
			}
		}
	}
}

// Send queues one message for a single connection. A full queue drops the
// message rather than blocking the caller.
func (s *Supervisor) Send(connID string, data []byte) error {
	s.mu.RLock()
	c, ok := s.conns[connID]
	s.mu.RUnlock()
	if !ok {
		// Connection already gone; outbound traffic to it is moot
		return nil
	}

	if !c.enqueue(data) {
		s.logger.Warn("dropping message, connection closed or buffer full",
			slog.String("conn_id", connID),
		)
	}
	return nil
}

// Broadcast queues one message for every open connection
func (s *Supervisor) Broadcast(data []byte) {
	for _, c := range s.snapshot() {
		if !c.enqueue(data) {
			s.logger.Warn("dropping broadcast, connection closed or buffer full",
				slog.String("conn_id", c.id),
			)
		}
	}
}

// ConnIDs lists the ids of all open connections
func (s *Supervisor) ConnIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.conns))
	for id := range s.conns {
		ids = append(ids, id)
	}
	return ids
}

func (s *Supervisor) snapshot() []*conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	return conns
}

// drop unregisters and closes one connection and releases its session
func (s *Supervisor) drop(c *conn) {
	s.mu.Lock()
	_, ok := s.conns[c.id]
	delete(s.conns, c.id)
	s.mu.Unlock()

	c.close()
	if ok {
		s.sessions.Detach(c.id)
		s.logger.Info("connection closed", slog.String("conn_id", c.id))
	}
}

// Shutdown notifies every client, allows a grace period for orderly
// closes, then force-terminates stragglers. New connections are refused
// from the moment it is called.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return nil
	}
	s.draining = true
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()

	closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	deadline := time.Now().Add(writeWait)
	for _, c := range s.snapshot() {
		_ = c.sock.WriteControl(websocket.CloseMessage, closeMsg, deadline)
	}

	select {
	case <-time.After(s.cfg.ShutdownGrace):
	case <-ctx.Done():
	}

	for _, c := range s.snapshot() {
		s.drop(c)
	}

	s.logger.Info("websocket supervisor stopped")
	return nil
}
