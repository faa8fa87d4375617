// Package stream fans ledger events out to websocket clients.
//
// Each API process keeps its own Hub fed by a broadcast subscription, so every
// connected client sees every Offered and Bought event regardless of which
// instance it is connected to. Delivery is best effort: a client that cannot
// keep up is disconnected rather than slowing the others down.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/omnik-labs/marketplace/pkg/events"
	"github.com/omnik-labs/marketplace/pkg/logger"
)

// ErrHubClosed is returned by Handler once Close has been called.
var ErrHubClosed = errors.New("stream: hub closed")

// Frame is the JSON envelope written to clients.
type Frame struct {
	Topic   string          `json:"topic"`
	EventID string          `json:"event_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Config tunes a Hub.
type Config struct {
	BufferSize   int           // frames queued per client before it is dropped
	WriteTimeout time.Duration
	PingInterval time.Duration
	// CheckOrigin decides whether an upgrade request is allowed. Nil allows all.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:   64,
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
	}
}

// Hub tracks connected clients and broadcasts frames to them.
type Hub struct {
	cfg      Config
	log      logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	closed  bool
	wg      sync.WaitGroup
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

// NewHub returns an empty Hub.
func NewHub(cfg Config, log logger.Logger) *Hub {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultConfig().PingInterval
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		cfg:     cfg,
		log:     log,
		clients: make(map[uuid.UUID]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues f for every client. Clients whose queue is full are disconnected.
func (h *Hub) Broadcast(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("stream: marshal frame: %w", err)
	}

	h.mu.RLock()
	var slow []*client
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("stream: dropping slow client", "client_id", c.id)
		c.stop()
	}
	return nil
}

// HandleMessage adapts Broadcast to events.Handler.
func (h *Hub) HandleMessage(_ context.Context, msg *message.Message) error {
	return h.Broadcast(Frame{
		Topic:   msg.Metadata.Get(events.MetaTopic),
		EventID: msg.Metadata.Get(events.MetaEventID),
		Payload: json.RawMessage(msg.Payload),
	})
}

// Handler upgrades the request to a websocket and streams frames until the
// client disconnects or the hub closes.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.RLock()
		closed := h.closed
		h.mu.RUnlock()
		if closed {
			http.Error(w, ErrHubClosed.Error(), http.StatusServiceUnavailable)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the error response.
			h.log.WarnContext(r.Context(), "stream: upgrade failed", "error", err)
			return
		}

		c := &client{
			id:   uuid.New(),
			conn: conn,
			send: make(chan []byte, h.cfg.BufferSize),
			done: make(chan struct{}),
		}
		if !h.register(c) {
			_ = conn.Close()
			return
		}
		h.log.InfoContext(r.Context(), "stream: client connected", "client_id", c.id)

		go h.readLoop(c)
		h.writeLoop(c)
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	h.wg.Add(1)
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	h.wg.Done()
}

// readLoop discards client input and notices when the peer goes away.
func (h *Hub) readLoop(c *client) {
	defer c.stop()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * h.cfg.PingInterval))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = c.conn.Close()
		h.unregister(c)
		h.log.Info("stream: client disconnected", "client_id", c.id)
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client and waits for their loops to finish.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for _, c := range h.clients {
		c.stop()
	}
	h.mu.Unlock()

	h.wg.Wait()
	return nil
}
