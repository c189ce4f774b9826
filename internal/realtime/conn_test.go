package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toky-team/toky-admin/internal/domain"
)

// fakeSocket records writes and serves queued inbound frames; Read blocks
// once the queue drains until the socket is closed.
type fakeSocket struct {
	mu      sync.Mutex
	writes  []Envelope
	inbound chan []byte
	closed  chan struct{}
	once    sync.Once
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (f *fakeSocket) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case data := <-f.inbound:
		return websocket.MessageText, data, nil
	case <-f.closed:
		return 0, nil, errors.New("socket closed")
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (f *fakeSocket) Write(_ context.Context, _ websocket.MessageType, p []byte) error {
	var env Envelope
	if err := json.Unmarshal(p, &env); err != nil {
		return err
	}
	f.mu.Lock()
	f.writes = append(f.writes, env)
	f.mu.Unlock()
	return nil
}

func (f *fakeSocket) Close(websocket.StatusCode, string) error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeSocket) push(t *testing.T, event Event, payload any) {
	t.Helper()
	env, err := NewEnvelope(event, payload)
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)
	f.inbound <- data
}

func (f *fakeSocket) emitted(event Event) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, env := range f.writes {
		if env.Event == event {
			n++
		}
	}
	return n
}

func testConn(ws *fakeSocket) *Conn {
	return newConn("chat", ws, time.Second, zap.NewNop())
}

func TestJoinRoomEmitsOnceWhileJoined(t *testing.T) {
	ws := newFakeSocket()
	c := testConn(ws)

	require.NoError(t, c.JoinRoom(domain.Football))
	require.NoError(t, c.JoinRoom(domain.Football))

	assert.Equal(t, 1, ws.emitted(EventJoinRoom))
	assert.Equal(t, []domain.Sport{domain.Football}, c.Rooms())
}

func TestLeaveRoomWithoutJoinEmitsNothing(t *testing.T) {
	ws := newFakeSocket()
	c := testConn(ws)

	require.NoError(t, c.LeaveRoom(domain.Football))
	assert.Equal(t, 0, ws.emitted(EventLeaveRoom))
}

func TestLeaveRoomEmitsOnLastSubscriberOnly(t *testing.T) {
	ws := newFakeSocket()
	c := testConn(ws)

	// Two independent subscribers of the same namespace.
	require.NoError(t, c.JoinRoom(domain.Football))
	require.NoError(t, c.JoinRoom(domain.Football))

	require.NoError(t, c.LeaveRoom(domain.Football))
	assert.Equal(t, 0, ws.emitted(EventLeaveRoom), "first leave must not emit while another subscriber remains")

	require.NoError(t, c.LeaveRoom(domain.Football))
	assert.Equal(t, 1, ws.emitted(EventLeaveRoom))
	assert.Empty(t, c.Rooms())
}

func TestEmitFailsWhenDisconnected(t *testing.T) {
	ws := newFakeSocket()
	c := testConn(ws)
	go c.run()

	ws.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return !c.Connected() }, time.Second, 5*time.Millisecond)

	err := c.Emit(EventSendMessage, SendMessagePayload{Sport: domain.Football, Message: "hi"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestDispatchRunsHandlersInArrivalOrder(t *testing.T) {
	ws := newFakeSocket()
	c := testConn(ws)

	var mu sync.Mutex
	var got []string
	c.On(EventReceiveMessage, func(data json.RawMessage) {
		var p ReceiveMessagePayload
		require.NoError(t, json.Unmarshal(data, &p))
		mu.Lock()
		got = append(got, p.Message.ID)
		mu.Unlock()
	})
	go c.run()

	ws.push(t, EventReceiveMessage, ReceiveMessagePayload{Message: domain.Chat{ID: "m1", Sport: domain.Football}})
	ws.push(t, EventReceiveMessage, ReceiveMessagePayload{Message: domain.Chat{ID: "m2", Sport: domain.Football}})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"m1", "m2"}, got)
	mu.Unlock()
	ws.Close(websocket.StatusNormalClosure, "")
}

func TestAdoptReplaysJoinsAndCarriesHandlers(t *testing.T) {
	oldWS := newFakeSocket()
	old := testConn(oldWS)
	require.NoError(t, old.JoinRoom(domain.Football))
	require.NoError(t, old.JoinRoom(domain.Basketball))

	var handled int
	old.On(EventReceiveMessage, func(json.RawMessage) { handled++ })

	newWS := newFakeSocket()
	fresh := testConn(newWS)
	fresh.adopt(old)

	assert.Equal(t, 2, newWS.emitted(EventJoinRoom))
	assert.ElementsMatch(t, []domain.Sport{domain.Football, domain.Basketball}, fresh.Rooms())

	fresh.dispatch(EventReceiveMessage, nil)
	assert.Equal(t, 1, handled)
}
