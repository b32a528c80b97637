package websocket

import (
	"context"
	"time"

	"agridash/pkg/contracts/domain"
)

// Connection is the subset of a gorilla connection the live session uses.
// Tests substitute an in-memory implementation.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// PageComputer computes a dashboard page for a selection.
type PageComputer interface {
	Compute(ctx context.Context, id domain.PageID, sel domain.Selection) (*domain.PageResult, error)
}

// Validator checks a decoded request against its validate tags.
type Validator interface {
	ValidateStruct(v interface{}) error
}
