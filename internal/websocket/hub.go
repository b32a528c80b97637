package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"agridash/internal/config"
	"agridash/internal/infrastructure"
)

// Server-initiated event types
const (
	TypeConnection = "connection"
	TypeSnapshot   = "snapshot"
)

// Event is a server-initiated message pushed to every live session.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Hub tracks the open live sessions and fans events out to them. The Run
// loop owns the client set; everything else talks to it over channels.
type Hub struct {
	clients map[*Client]struct{}

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	computer  PageComputer
	validator Validator
	cfg       config.WebSocketConfig
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger

	quit    chan struct{}
	done    chan struct{}
	running bool
}

// NewHub creates a new Hub instance with dependency injection
func NewHub(computer PageComputer, validator Validator, cfg config.WebSocketConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		computer:   computer,
		validator:  validator,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in the background. It is idempotent.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.Run()
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for c := range h.clients {
				c.closeSend()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()

			if h.metrics != nil {
				h.metrics.LiveSessionsActive.Add(c.ctx, 1)
			}
			h.logger.InfoContext(c.ctx, "client registered",
				slog.String("client_id", c.id),
				slog.String("remote_addr", c.remoteAddr),
				slog.Int("total_clients", count))

			c.enqueue(h.encode(TypeConnection, map[string]string{"client_id": c.id}))

		case c := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[c]
			if ok {
				delete(h.clients, c)
				c.closeSend()
			}
			count := len(h.clients)
			h.mu.Unlock()

			if ok {
				if h.metrics != nil {
					h.metrics.LiveSessionsActive.Add(c.ctx, -1)
				}
				h.logger.InfoContext(c.ctx, "client unregistered",
					slog.String("client_id", c.id),
					slog.Int("total_clients", count),
					slog.Duration("connection_duration", time.Since(c.connectedAt)))
			}

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if !c.enqueue(msg) {
					c.closeSend()
					delete(h.clients, c)
					h.logger.Warn("client send buffer full, disconnecting",
						slog.String("client_id", c.id))
				}
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Debug("event broadcast",
				slog.Int("client_count", count),
				slog.Int("message_size", len(msg)))
		}
	}
}

// Stop shuts the hub down and closes every session. It is idempotent and
// safe to call on a hub that was never started.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}

// Broadcast pushes an event to every connected client. Events sent after
// Stop are dropped.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	msg := h.encode(eventType, data)
	if msg == nil {
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve attaches an upgraded connection to the hub and starts its pumps.
func (h *Hub) Serve(conn Connection, traceID string) *Client {
	c := newClient(h, conn, traceID)
	select {
	case h.register <- c:
	case <-h.quit:
		conn.Close()
		c.cancel()
		return c
	}
	go c.writePump()
	go c.readPump()
	return c
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

func (h *Hub) encode(eventType string, data interface{}) []byte {
	msg, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Error("marshaling event",
			slog.String("type", eventType),
			slog.String("error", err.Error()))
		return nil
	}
	return msg
}

func (h *Hub) baseContext(traceID string) context.Context {
	ctx := context.Background()
	if traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, traceID)
	}
	return ctx
}
