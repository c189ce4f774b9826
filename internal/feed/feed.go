// Package feed reconciles the chat namespace's live push stream against
// REST-fetched history, and tracks cheer/like counters. Each Feed owns two
// pieces of state the merge step consumes: the push buffer of not-yet
// reconciled messages and the set of IDs known to be deleted.
package feed

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/toky-team/toky-admin/internal/apierr"
	"github.com/toky-team/toky-admin/internal/domain"
	"github.com/toky-team/toky-admin/internal/realtime"
)

const chatNamespace = "chat"

// Feed is the chat-namespace reducer. Event handlers run on the connection
// read loop; public methods may be called from anywhere.
type Feed struct {
	reg *realtime.Registry
	log *zap.Logger

	mu       sync.Mutex
	push     []domain.Chat // newest first
	filtered map[string]struct{}
	lastErr  string
}

// NewFeed connects the chat namespace through the registry and wires the
// reducer's handlers. The returned Feed survives reconnects: the registry
// carries handlers and room membership over to replacement connections.
func NewFeed(ctx context.Context, reg *realtime.Registry, log *zap.Logger) (*Feed, error) {
	f := &Feed{
		reg:      reg,
		log:      log.Named("feed"),
		filtered: make(map[string]struct{}),
	}
	conn, err := reg.Connect(ctx, chatNamespace)
	if err != nil {
		return nil, err
	}
	conn.On(realtime.EventReceiveMessage, f.onReceiveMessage)
	conn.On(realtime.EventMessageFiltered, f.onMessageFiltered)
	conn.On(realtime.EventError, f.onError)
	conn.On(realtime.EventConnectError, f.onConnectError)
	conn.On(realtime.EventConnect, func(json.RawMessage) { f.setErr("") })
	return f, nil
}

func (f *Feed) conn() *realtime.Conn {
	return f.reg.Get(chatNamespace)
}

// Connected reports whether the chat namespace is currently live.
func (f *Feed) Connected() bool {
	c := f.conn()
	return c != nil && c.Connected()
}

// LastError returns the most recent connection or server error message,
// empty after a clean connect.
func (f *Feed) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Feed) setErr(msg string) {
	f.mu.Lock()
	f.lastErr = msg
	f.mu.Unlock()
}

func (f *Feed) onReceiveMessage(data json.RawMessage) {
	var p realtime.ReceiveMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		f.log.Warn("bad receive_message payload", zap.Error(err))
		return
	}
	f.mu.Lock()
	// Prepend: the buffer is newest-first. No dedup here; Merge handles it.
	f.push = append([]domain.Chat{p.Message}, f.push...)
	f.mu.Unlock()
}

func (f *Feed) onMessageFiltered(data json.RawMessage) {
	var p realtime.MessageFilteredPayload
	if err := json.Unmarshal(data, &p); err != nil {
		f.log.Warn("bad message_filtered payload", zap.Error(err))
		return
	}
	f.markFiltered(p.FilteredMessage.ID)
}

func (f *Feed) onError(data json.RawMessage) {
	var p realtime.ErrorPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Message.Message == "" {
		f.setErr("an error occurred")
		return
	}
	f.setErr(p.Message.Message)
}

func (f *Feed) onConnectError(data json.RawMessage) {
	var p realtime.ConnectErrorPayload
	if err := json.Unmarshal(data, &p); err == nil {
		if apiErr, ok := apierr.ParseString(p.Message); ok && apiErr.Message != "" {
			f.setErr(apiErr.Message)
			return
		}
	}
	f.setErr("failed to connect to server")
}

// JoinRoom subscribes to a sport's chat room; idempotent while joined.
func (f *Feed) JoinRoom(sport domain.Sport) error {
	c := f.conn()
	if c == nil {
		return realtime.ErrNotConnected
	}
	return c.JoinRoom(sport)
}

// LeaveRoom drops the subscription; a no-op without a prior JoinRoom.
func (f *Feed) LeaveRoom(sport domain.Sport) error {
	c := f.conn()
	if c == nil {
		return realtime.ErrNotConnected
	}
	return c.LeaveRoom(sport)
}

// SendMessage posts a chat message into a sport's room.
func (f *Feed) SendMessage(sport domain.Sport, message string) error {
	c := f.conn()
	if c == nil {
		return realtime.ErrNotConnected
	}
	return c.Emit(realtime.EventSendMessage, realtime.SendMessagePayload{Sport: sport, Message: message})
}

// PushFor returns the buffered live messages for one sport, newest first.
func (f *Feed) PushFor(sport domain.Sport) []domain.Chat {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Chat
	for _, c := range f.push {
		if c.Sport == sport {
			out = append(out, c)
		}
	}
	return out
}

// ClearFor drops buffered messages for one sport, typically after the
// caller reloaded that sport's history and the buffer is redundant.
func (f *Feed) ClearFor(sport domain.Sport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.push[:0:0]
	for _, c := range f.push {
		if c.Sport != sport {
			kept = append(kept, c)
		}
	}
	f.push = kept
}

// TotalPushed returns the size of the push buffer across sports.
func (f *Feed) TotalPushed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.push)
}

// MarkDeleted records IDs as deleted and purges them from the push buffer.
// Call it after the delete API call succeeded, never before. Filtering is
// monotonic: later pushes for a marked ID stay suppressed for the session.
func (f *Feed) MarkDeleted(ids ...string) {
	f.markFiltered(ids...)
}

func (f *Feed) markFiltered(ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.filtered[id] = struct{}{}
	}
	kept := f.push[:0:0]
	for _, c := range f.push {
		if _, gone := f.filtered[c.ID]; !gone {
			kept = append(kept, c)
		}
	}
	f.push = kept
}

// IsFiltered reports whether an ID is known deleted. Membership is checked,
// never iterated, at render time.
func (f *Feed) IsFiltered(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.filtered[id]
	return ok
}

// Merge reconciles a base list against this feed's push buffer for one
// sport. Pure with respect to base; see the package-level Merge.
func (f *Feed) Merge(base []domain.Chat, sport domain.Sport) []domain.Chat {
	f.mu.Lock()
	push := make([]domain.Chat, len(f.push))
	copy(push, f.push)
	f.mu.Unlock()
	return Merge(base, push, sport)
}

// FilterOut removes deleted messages entirely. Views that want a "removed"
// placeholder instead use Annotate.
func (f *Feed) FilterOut(items []domain.Chat) []domain.Chat {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Chat, 0, len(items))
	for _, c := range items {
		if _, gone := f.filtered[c.ID]; gone || c.Removed() {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Annotate returns a copy of items with Deleted set on every message the
// client knows to be gone, keeping them in place for placeholder rendering.
func (f *Feed) Annotate(items []domain.Chat) []domain.Chat {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Chat, len(items))
	copy(out, items)
	for i := range out {
		if _, gone := f.filtered[out[i].ID]; gone || out[i].Removed() {
			out[i].Deleted = true
		}
	}
	return out
}
