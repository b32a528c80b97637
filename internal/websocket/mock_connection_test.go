package websocket

import (
	"errors"
	"sync"
	"time"
)

// MockConnection is an in-memory Connection. Reads are fed through
// Inbound and block until a message arrives or the connection closes.
type MockConnection struct {
	mu      sync.Mutex
	written []MockMessage
	closed  bool

	inbound chan []byte
	done    chan struct{}

	ReadLimit     int64
	RemoteAddress string
}

// MockMessage is one frame written by the server.
type MockMessage struct {
	Type int
	Data []byte
}

func NewMockConnection() *MockConnection {
	return &MockConnection{
		inbound:       make(chan []byte, 16),
		done:          make(chan struct{}),
		RemoteAddress: "127.0.0.1:50000",
	}
}

// Inbound queues a text frame for the server to read.
func (m *MockConnection) Inbound(data string) {
	m.inbound <- []byte(data)
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("connection closed")
	}
	m.written = append(m.written, MockMessage{Type: messageType, Data: data})
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.inbound:
		return 1, msg, nil
	case <-m.done:
		return 0, nil, errors.New("connection closed")
	}
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *MockConnection) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *MockConnection) SetWriteDeadline(time.Time) error { return nil }

func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

func (m *MockConnection) SetPongHandler(func(string) error) {}

func (m *MockConnection) RemoteAddr() string { return m.RemoteAddress }

// Written returns a copy of the frames written so far.
func (m *MockConnection) Written() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockMessage(nil), m.written...)
}
