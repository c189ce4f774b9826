package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toky-team/toky-admin/internal/apierr"
	"github.com/toky-team/toky-admin/internal/config"
	"github.com/toky-team/toky-admin/internal/domain"
)

// wsBackend accepts namespace sockets and lets tests refuse handshakes or
// hold a path's dial at the server until released.
type wsBackend struct {
	srv      *httptest.Server
	refuse   atomic.Bool
	accepted chan *websocket.Conn

	mu    sync.Mutex
	holds map[string]*dialHold
}

type dialHold struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

func newWSBackend(t *testing.T) *wsBackend {
	t.Helper()
	b := &wsBackend{
		accepted: make(chan *websocket.Conn, 8),
		holds:    make(map[string]*dialHold),
	}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.refuse.Load() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(apierr.APIError{
				Status:    http.StatusServiceUnavailable,
				ErrorName: "Service Unavailable",
				Message:   "maintenance",
			})
			return
		}
		b.mu.Lock()
		h := b.holds[r.URL.Path]
		b.mu.Unlock()
		if h != nil {
			h.once.Do(func() { close(h.arrived) })
			<-h.release
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		b.accepted <- conn
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				return
			}
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *wsBackend) hold(path string) *dialHold {
	h := &dialHold{arrived: make(chan struct{}), release: make(chan struct{})}
	b.mu.Lock()
	b.holds[path] = h
	b.mu.Unlock()
	return h
}

func testRegistry(t *testing.T, baseURL string) *Registry {
	t.Helper()
	reg := NewRegistry(config.Config{WSURL: baseURL, WriteTimeout: time.Second}, nil, zap.NewNop())
	t.Cleanup(reg.Close)
	return reg
}

func TestConnectKeepsSubscriptionStateAcrossFailedRedial(t *testing.T) {
	backend := newWSBackend(t)
	reg := testRegistry(t, backend.srv.URL)

	conn1, err := reg.Connect(context.Background(), "chat")
	require.NoError(t, err)
	require.NoError(t, conn1.JoinRoom(domain.Football))

	var received atomic.Int32
	conn1.On(EventReceiveMessage, func(json.RawMessage) { received.Add(1) })

	// Backend drops the socket.
	serverConn := <-backend.accepted
	_ = serverConn.Close(websocket.StatusGoingAway, "restart")
	require.Eventually(t, func() bool { return !conn1.Connected() }, time.Second, 5*time.Millisecond)

	// Redial refused: the dead connection must stay cached with its rooms
	// and handlers intact.
	backend.refuse.Store(true)
	_, err = reg.Connect(context.Background(), "chat")
	require.Error(t, err)
	assert.Same(t, conn1, reg.Get("chat"))
	assert.Equal(t, []domain.Sport{domain.Football}, conn1.Rooms())

	// Recovery: the replacement carries everything over.
	backend.refuse.Store(false)
	conn2, err := reg.Connect(context.Background(), "chat")
	require.NoError(t, err)
	require.NotSame(t, conn1, conn2)
	assert.Equal(t, []domain.Sport{domain.Football}, conn2.Rooms())

	conn2.dispatch(EventReceiveMessage, nil)
	assert.Equal(t, int32(1), received.Load(), "handler registered before the outage must still fire")
}

func TestFailedRedialRaisesConnectError(t *testing.T) {
	backend := newWSBackend(t)
	reg := testRegistry(t, backend.srv.URL)

	conn, err := reg.Connect(context.Background(), "chat")
	require.NoError(t, err)

	var gotMsg atomic.Value
	conn.On(EventConnectError, func(data json.RawMessage) {
		var p ConnectErrorPayload
		require.NoError(t, json.Unmarshal(data, &p))
		gotMsg.Store(p.Message)
	})

	serverConn := <-backend.accepted
	_ = serverConn.Close(websocket.StatusGoingAway, "restart")
	require.Eventually(t, func() bool { return !conn.Connected() }, time.Second, 5*time.Millisecond)

	backend.refuse.Store(true)
	_, err = reg.Connect(context.Background(), "chat")
	require.Error(t, err)

	// The payload carries the structured rejection JSON-stringified, the
	// same shape subscribers parse with apierr.ParseString.
	raw, ok := gotMsg.Load().(string)
	require.True(t, ok, "connect_error must reach the dead connection's subscribers")
	apiErr, ok := apierr.ParseString(raw)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "maintenance", apiErr.Message)
}

func TestConnectDialsNamespacesIndependently(t *testing.T) {
	backend := newWSBackend(t)
	h := backend.hold("/ws/chat")
	reg := testRegistry(t, backend.srv.URL)

	done := make(chan error, 1)
	go func() {
		_, err := reg.Connect(context.Background(), "chat")
		done <- err
	}()
	<-h.arrived

	// With the chat dial held at the server, another namespace connects.
	conn, err := reg.Connect(context.Background(), "cheer")
	require.NoError(t, err)
	assert.True(t, conn.Connected())

	close(h.release)
	require.NoError(t, <-done)
}
