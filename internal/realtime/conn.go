package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/toky-team/toky-admin/internal/domain"
)

// ErrNotConnected is returned by Emit when the underlying socket is gone.
var ErrNotConnected = errors.New("realtime: not connected")

// Handler consumes one event's raw payload. Handlers run on the read-loop
// goroutine, so state they touch sees events one at a time, in arrival
// order.
type Handler func(data json.RawMessage)

// socket is the slice of *websocket.Conn the Conn needs; tests substitute
// an in-memory implementation.
type socket interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Conn is one live namespace connection. Room membership is reference
// counted here, shared by every consumer of the namespace: join_room goes
// out only on the 0->1 transition and leave_room only on 1->0, so two
// independent subscribers cannot desynchronize server-side membership.
type Conn struct {
	namespace    string
	ws           socket
	log          *zap.Logger
	writeTimeout time.Duration

	mu        sync.Mutex
	handlers  map[Event][]Handler
	rooms     map[domain.Sport]int
	connected bool

	done chan struct{}
}

func newConn(namespace string, ws socket, writeTimeout time.Duration, log *zap.Logger) *Conn {
	c := &Conn{
		namespace:    namespace,
		ws:           ws,
		log:          log.Named("realtime").With(zap.String("namespace", namespace)),
		writeTimeout: writeTimeout,
		handlers:     make(map[Event][]Handler),
		rooms:        make(map[domain.Sport]int),
		connected:    true,
		done:         make(chan struct{}),
	}
	return c
}

func (c *Conn) Namespace() string { return c.namespace }

func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// On registers a handler for an event. Multiple handlers per event are
// dispatched in registration order.
func (c *Conn) On(event Event, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// Emit sends one envelope. Fails fast when the connection is down; callers
// relying on room replay should use JoinRoom instead of raw join emits.
func (c *Conn) Emit(event Event, payload any) error {
	c.mu.Lock()
	ok := c.connected
	c.mu.Unlock()
	if !ok {
		return ErrNotConnected
	}

	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()
	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		return err
	}
	return nil
}

// JoinRoom subscribes this namespace to a sport's room. Idempotent per
// subscriber count: only the first join for a sport emits.
func (c *Conn) JoinRoom(sport domain.Sport) error {
	c.mu.Lock()
	c.rooms[sport]++
	first := c.rooms[sport] == 1
	connected := c.connected
	c.mu.Unlock()

	if !first || !connected {
		return nil
	}
	return c.Emit(EventJoinRoom, RoomPayload{Sport: sport})
}

// LeaveRoom drops one subscription. The leave_room emit happens only when
// the last subscriber leaves; leaving a room never joined is a no-op.
func (c *Conn) LeaveRoom(sport domain.Sport) error {
	c.mu.Lock()
	n, ok := c.rooms[sport]
	if !ok || n == 0 {
		c.mu.Unlock()
		return nil
	}
	n--
	last := n == 0
	if last {
		delete(c.rooms, sport)
	} else {
		c.rooms[sport] = n
	}
	connected := c.connected
	c.mu.Unlock()

	if !last || !connected {
		return nil
	}
	return c.Emit(EventLeaveRoom, RoomPayload{Sport: sport})
}

// Rooms lists the sports with at least one subscriber.
func (c *Conn) Rooms() []domain.Sport {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Sport, 0, len(c.rooms))
	for sport := range c.rooms {
		out = append(out, sport)
	}
	return out
}

// adopt carries handlers and room refcounts over from a dead predecessor
// and replays joins so the server-side membership matches again.
func (c *Conn) adopt(old *Conn) {
	old.mu.Lock()
	handlers := old.handlers
	rooms := old.rooms
	old.mu.Unlock()

	c.mu.Lock()
	for ev, hs := range handlers {
		c.handlers[ev] = append(c.handlers[ev], hs...)
	}
	for sport, n := range rooms {
		c.rooms[sport] += n
	}
	replay := make([]domain.Sport, 0, len(c.rooms))
	for sport := range c.rooms {
		replay = append(replay, sport)
	}
	c.mu.Unlock()

	for _, sport := range replay {
		if err := c.Emit(EventJoinRoom, RoomPayload{Sport: sport}); err != nil {
			c.log.Warn("room replay failed", zap.String("sport", string(sport)), zap.Error(err))
		}
	}
}

// run reads envelopes until the socket dies, dispatching handlers inline.
// A synthetic connect event fires first, a synthetic disconnect last.
func (c *Conn) run() {
	c.dispatch(EventConnect, nil)

	for {
		_, data, err := c.ws.Read(context.Background())
		if err != nil {
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()

			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				c.log.Debug("read loop ended", zap.Error(err))
			}
			c.dispatch(EventDisconnect, nil)
			close(c.done)
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn("dropping malformed envelope", zap.Error(err))
			continue
		}
		c.dispatch(env.Event, env.Data)
	}
}

func (c *Conn) dispatch(event Event, data json.RawMessage) {
	c.mu.Lock()
	hs := make([]Handler, len(c.handlers[event]))
	copy(hs, c.handlers[event])
	c.mu.Unlock()
	for _, h := range hs {
		h(data)
	}
}

// close tears the socket down and marks the Conn dead.
func (c *Conn) close() {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	c.mu.Unlock()

	if wasConnected {
		_ = c.ws.Close(websocket.StatusNormalClosure, "client disconnect")
	}
	select {
	case <-c.done:
	case <-time.After(c.writeTimeout):
	}
}
