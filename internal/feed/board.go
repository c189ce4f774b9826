package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/toky-team/toky-admin/internal/apierr"
	"github.com/toky-team/toky-admin/internal/domain"
	"github.com/toky-team/toky-admin/internal/realtime"
)

// BoardKind selects between the cheer and like namespaces, which share the
// same counter shape and room protocol.
type BoardKind string

const (
	CheerBoard BoardKind = "cheer"
	LikeBoard  BoardKind = "like"
)

func (k BoardKind) updateEvent() realtime.Event {
	if k == LikeBoard {
		return realtime.EventLikeUpdate
	}
	return realtime.EventCheerUpdate
}

func (k BoardKind) addEvent() realtime.Event {
	if k == LikeBoard {
		return realtime.EventAddLike
	}
	return realtime.EventAddCheer
}

// Totals is the latest counter pair for one sport.
type Totals struct {
	KULike    int
	YULike    int
	UpdatedAt time.Time
}

// Board is an aggregate view over a counter namespace: it joins every
// sport's room and keeps only the latest value per sport.
type Board struct {
	kind BoardKind
	reg  *realtime.Registry
	log  *zap.Logger

	mu      sync.Mutex
	totals  map[domain.Sport]Totals
	lastErr string
}

// NewBoard connects the namespace and subscribes to every sport's room.
func NewBoard(ctx context.Context, reg *realtime.Registry, kind BoardKind, log *zap.Logger) (*Board, error) {
	b := &Board{
		kind:   kind,
		reg:    reg,
		log:    log.Named(string(kind)),
		totals: make(map[domain.Sport]Totals),
	}
	conn, err := reg.Connect(ctx, string(kind))
	if err != nil {
		return nil, err
	}
	conn.On(kind.updateEvent(), b.onUpdate)
	conn.On(realtime.EventError, b.onError)
	conn.On(realtime.EventConnectError, b.onConnectError)
	conn.On(realtime.EventConnect, func(json.RawMessage) { b.setErr("") })
	for _, sport := range domain.AllSports() {
		if err := conn.JoinRoom(sport); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Board) onUpdate(data json.RawMessage) {
	// Cheer and Like updates carry identical fields under different keys.
	if b.kind == LikeBoard {
		var p realtime.LikeUpdatePayload
		if err := json.Unmarshal(data, &p); err != nil {
			b.log.Warn("bad like_update payload", zap.Error(err))
			return
		}
		b.set(p.Like.Sport, Totals{KULike: p.Like.KULike, YULike: p.Like.YULike, UpdatedAt: p.Like.UpdatedAt})
		return
	}
	var p realtime.CheerUpdatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		b.log.Warn("bad cheer_update payload", zap.Error(err))
		return
	}
	b.set(p.Cheer.Sport, Totals{KULike: p.Cheer.KULike, YULike: p.Cheer.YULike, UpdatedAt: p.Cheer.UpdatedAt})
}

func (b *Board) onError(data json.RawMessage) {
	var p realtime.ErrorPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Message.Message == "" {
		b.setErr("an error occurred")
		return
	}
	b.setErr(p.Message.Message)
}

func (b *Board) onConnectError(data json.RawMessage) {
	var p realtime.ConnectErrorPayload
	if err := json.Unmarshal(data, &p); err == nil {
		if apiErr, ok := apierr.ParseString(p.Message); ok && apiErr.Message != "" {
			b.setErr(apiErr.Message)
			return
		}
	}
	b.setErr("failed to connect to server")
}

func (b *Board) setErr(msg string) {
	b.mu.Lock()
	b.lastErr = msg
	b.mu.Unlock()
}

// LastError returns the most recent server or connection error message,
// empty after a clean connect.
func (b *Board) LastError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

func (b *Board) set(sport domain.Sport, t Totals) {
	b.mu.Lock()
	b.totals[sport] = t
	b.mu.Unlock()
}

// Get returns the latest counters for a sport; ok is false before the
// first update arrives.
func (b *Board) Get(sport domain.Sport) (Totals, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.totals[sport]
	return t, ok
}

// All snapshots the board.
func (b *Board) All() map[domain.Sport]Totals {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[domain.Sport]Totals, len(b.totals))
	for sport, t := range b.totals {
		out[sport] = t
	}
	return out
}

// Add emits likes for one university. The counter comes back via the
// update event rather than being bumped locally.
func (b *Board) Add(sport domain.Sport, university domain.University, likes int) error {
	conn := b.reg.Get(string(b.kind))
	if conn == nil {
		return realtime.ErrNotConnected
	}
	return conn.Emit(b.kind.addEvent(), realtime.AddLikesPayload{
		Sport:      sport,
		University: university,
		Likes:      likes,
	})
}
