package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"agridash/internal/config"
	apierrors "agridash/internal/errors"
	"agridash/internal/middleware"
	"agridash/internal/services"
	api "agridash/pkg/contracts/api/v1"
	"agridash/pkg/contracts/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type computeFunc func(ctx context.Context, id domain.PageID, sel domain.Selection) (*domain.PageResult, error)

func (f computeFunc) Compute(ctx context.Context, id domain.PageID, sel domain.Selection) (*domain.PageResult, error) {
	return f(ctx, id, sel)
}

func echoComputer() computeFunc {
	return func(_ context.Context, id domain.PageID, sel domain.Selection) (*domain.PageResult, error) {
		return &domain.PageResult{Page: id, Selection: sel, RowCount: len(sel.Countries)}, nil
	}
}

func newTestHub(t *testing.T, computer PageComputer) *Hub {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.WebSocketConfig{PingPeriod: time.Hour, PongWait: 2 * time.Hour, MaxMessageSize: 4096}
	hub := NewHub(computer, middleware.NewValidator(), cfg, nil, logger)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

type frame struct {
	Type   string             `json:"type"`
	ID     string             `json:"id"`
	Data   json.RawMessage    `json:"data"`
	Result *domain.PageResult `json:"result"`
	Error  *api.LiveError     `json:"error"`
}

func frames(t *testing.T, conn *MockConnection) []frame {
	t.Helper()
	var out []frame
	for _, m := range conn.Written() {
		if m.Type != 1 {
			continue
		}
		var f frame
		require.NoError(t, json.Unmarshal(m.Data, &f))
		out = append(out, f)
	}
	return out
}

func waitFrame(t *testing.T, conn *MockConnection, typ string) frame {
	t.Helper()
	var got frame
	require.Eventually(t, func() bool {
		for _, f := range frames(t, conn) {
			if f.Type == typ {
				got = f
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond, "no %q frame", typ)
	return got
}

func TestServeRegistersAndGreets(t *testing.T) {
	hub := newTestHub(t, echoComputer())
	conn := NewMockConnection()

	client := hub.Serve(conn, "trace-1")

	f := waitFrame(t, conn, TypeConnection)
	assert.Contains(t, string(f.Data), client.ID())
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, int64(4096), func() int64 {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return conn.ReadLimit
	}())
}

func TestComputeRequest(t *testing.T) {
	hub := newTestHub(t, echoComputer())
	conn := NewMockConnection()
	hub.Serve(conn, "")

	conn.Inbound(`{"type":"heartbeat"}`)
	conn.Inbound(`{"id":"r1","type":"compute","page":"overview","selection":{"countries":["France","Japan"]}}`)

	f := waitFrame(t, conn, api.LiveTypePage)
	assert.Equal(t, "r1", f.ID)
	require.NotNil(t, f.Result)
	assert.Equal(t, domain.PageOverview, f.Result.Page)
	assert.Equal(t, 2, f.Result.RowCount)
	assert.Equal(t, []string{"France", "Japan"}, f.Result.Selection.Countries)
}

func TestLiveErrors(t *testing.T) {
	failing := computeFunc(func(_ context.Context, id domain.PageID, _ domain.Selection) (*domain.PageResult, error) {
		if id == "forestry" {
			return nil, fmt.Errorf("%w: %s", services.ErrUnknownPage, id)
		}
		return nil, assert.AnError
	})

	tests := []struct {
		name     string
		message  string
		wantCode string
	}{
		{"malformed json", `{"type":`, apierrors.CodeInvalidRequest},
		{"missing page", `{"type":"compute"}`, apierrors.CodeValidationFailed},
		{"unknown type", `{"type":"subscribe","page":"water"}`, apierrors.CodeValidationFailed},
		{"bad contamination type", `{"type":"compute","page":"water","selection":{"contamination_types":["Arsenic"]}}`, apierrors.CodeValidationFailed},
		{"inverted year range", `{"type":"compute","page":"water","selection":{"year_range":{"start":2010,"end":2000}}}`, apierrors.CodeValidationFailed},
		{"unknown page", `{"type":"compute","page":"forestry"}`, apierrors.CodePageNotFound},
		{"compute failure", `{"type":"compute","page":"water"}`, apierrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := newTestHub(t, failing)
			conn := NewMockConnection()
			hub.Serve(conn, "")

			conn.Inbound(tt.message)

			f := waitFrame(t, conn, api.LiveTypeError)
			require.NotNil(t, f.Error)
			assert.Equal(t, tt.wantCode, f.Error.Code)
		})
	}
}

func TestNewerRequestSupersedesPending(t *testing.T) {
	var (
		mu       sync.Mutex
		canceled []string
	)
	slow := computeFunc(func(ctx context.Context, id domain.PageID, sel domain.Selection) (*domain.PageResult, error) {
		if id == domain.PageErosion {
			<-ctx.Done()
			mu.Lock()
			canceled = append(canceled, string(id))
			mu.Unlock()
			return nil, ctx.Err()
		}
		return &domain.PageResult{Page: id}, nil
	})

	hub := newTestHub(t, slow)
	conn := NewMockConnection()
	hub.Serve(conn, "")

	conn.Inbound(`{"id":"a","type":"compute","page":"erosion"}`)
	time.Sleep(20 * time.Millisecond)
	conn.Inbound(`{"id":"b","type":"compute","page":"water"}`)

	f := waitFrame(t, conn, api.LiveTypePage)
	assert.Equal(t, "b", f.ID)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(canceled) == 1
	}, time.Second, 5*time.Millisecond)

	for _, f := range frames(t, conn) {
		assert.NotEqual(t, "a", f.ID, "superseded request must not be answered")
	}
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub := newTestHub(t, echoComputer())
	conns := []*MockConnection{NewMockConnection(), NewMockConnection()}
	for _, c := range conns {
		hub.Serve(c, "")
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(TypeSnapshot, map[string]string{"file": "kpi_snapshot_20261018T060000.csv"})

	for _, c := range conns {
		f := waitFrame(t, c, TypeSnapshot)
		assert.Contains(t, string(f.Data), "kpi_snapshot_20261018T060000.csv")
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := newTestHub(t, echoComputer())
	conn := NewMockConnection()
	hub.Serve(conn, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestStopClosesSessions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(echoComputer(), middleware.NewValidator(), config.WebSocketConfig{}, nil, logger)
	hub.Start()
	hub.Start()

	conn := NewMockConnection()
	hub.Serve(conn, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Stop()
	hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())
	require.Eventually(t, conn.IsClosed, time.Second, 5*time.Millisecond)

	// A hub that is gone refuses new sessions and drops events.
	late := NewMockConnection()
	hub.Serve(late, "")
	assert.True(t, late.IsClosed())
	hub.Broadcast(TypeSnapshot, nil)
}

func TestStopWithoutStart(t *testing.T) {
	hub := NewHub(echoComputer(), middleware.NewValidator(), config.WebSocketConfig{}, nil, nil)
	assert.NotPanics(t, hub.Stop)
}
