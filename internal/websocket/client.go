package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	apierrors "agridash/internal/errors"
	"agridash/internal/services"
	api "agridash/pkg/contracts/api/v1"
	"agridash/pkg/contracts/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 64 << 10

	sendBuffer = 64
)

var heartbeat = []byte(`{"type":"heartbeat"}`)

// Client is one live dashboard session. Every compute request supersedes
// the one before it: a newer selection cancels an unfinished computation,
// so a client only ever receives the page for its latest request.
type Client struct {
	hub  *Hub
	conn Connection

	send   chan []byte
	mu     sync.Mutex
	closed bool

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	reqMu      sync.Mutex
	cancelPrev context.CancelFunc
	inflight   sync.WaitGroup

	logger *slog.Logger
}

func newClient(h *Hub, conn Connection, traceID string) *Client {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(h.baseContext(traceID))
	logger := h.logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	return &Client{
		hub:         h,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// ID returns the client's session id.
func (c *Client) ID() string { return c.id }

func (c *Client) enqueue(msg []byte) bool {
	if msg == nil {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) pongWait() time.Duration {
	if c.hub.cfg.PongWait > 0 {
		return c.hub.cfg.PongWait
	}
	return defaultPongWait
}

func (c *Client) pingPeriod() time.Duration {
	if p := c.hub.cfg.PingPeriod; p > 0 && p < c.pongWait() {
		return p
	}
	return c.pongWait() * 9 / 10
}

func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.inflight.Wait()
		c.hub.leave(c)
		c.conn.Close()
		c.logger.InfoContext(c.ctx, "client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)))
	}()

	limit := c.hub.cfg.MaxMessageSize
	if limit <= 0 {
		limit = defaultMaxMessageSize
	}
	c.conn.SetReadLimit(limit)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WarnContext(c.ctx, "unexpected close",
					slog.String("error", err.Error()))
			}
			return
		}
		message = bytes.TrimSpace(message)
		if bytes.Equal(message, heartbeat) {
			continue
		}
		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	var req api.LiveRequest
	if err := json.Unmarshal(message, &req); err != nil {
		c.reply(api.LiveResponse{
			Type:  api.LiveTypeError,
			Error: &api.LiveError{Code: apierrors.CodeInvalidRequest, Message: "message is not valid JSON"},
		})
		return
	}
	if err := c.hub.validator.ValidateStruct(req); err != nil {
		c.reply(api.LiveResponse{ID: req.ID, Type: api.LiveTypeError, Error: liveError(err)})
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.reqMu.Lock()
	if c.cancelPrev != nil {
		c.cancelPrev()
	}
	c.cancelPrev = cancel
	c.reqMu.Unlock()

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()

		result, err := c.hub.computer.Compute(ctx, domain.PageID(req.Page), req.Selection)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.logger.WarnContext(ctx, "live compute failed",
				slog.String("page", req.Page),
				slog.String("error", err.Error()))
			c.reply(api.LiveResponse{ID: req.ID, Type: api.LiveTypeError, Error: liveError(err)})
			return
		}
		c.reply(api.LiveResponse{ID: req.ID, Type: api.LiveTypePage, Result: result})
	}()
}

func (c *Client) reply(resp api.LiveResponse) {
	msg, err := json.Marshal(resp)
	if err != nil {
		c.logger.ErrorContext(c.ctx, "marshaling live response",
			slog.String("error", err.Error()))
		return
	}
	if !c.enqueue(msg) {
		c.logger.WarnContext(c.ctx, "dropping live response, send buffer unavailable")
	}
}

func liveError(err error) *api.LiveError {
	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &apiErr):
		return &api.LiveError{Code: apiErr.ErrorCode, Message: apiErr.Message, Details: apiErr.Details}
	case errors.Is(err, services.ErrUnknownPage):
		return &api.LiveError{Code: apierrors.CodePageNotFound, Message: err.Error()}
	default:
		return &api.LiveError{Code: apierrors.CodeInternal, Message: "page computation failed"}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.DebugContext(c.ctx, "write failed",
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.ctx, "ping failed",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
