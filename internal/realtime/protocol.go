// Package realtime manages the websocket side of the admin API: one
// connection per namespace (chat, cheer, like), JSON event envelopes, and
// reference-counted room membership.
package realtime

import (
	"encoding/json"

	"github.com/toky-team/toky-admin/internal/apierr"
	"github.com/toky-team/toky-admin/internal/domain"
)

// Event identifies a websocket event.
type Event string

const (
	// Client -> server
	EventJoinRoom    Event = "join_room"
	EventLeaveRoom   Event = "leave_room"
	EventSendMessage Event = "send_message"
	EventAddCheer    Event = "add_cheer"
	EventAddLike     Event = "add_like"

	// Server -> client
	EventReceiveMessage  Event = "receive_message"
	EventMessageFiltered Event = "message_filtered"
	EventCheerUpdate     Event = "cheer_update"
	EventLikeUpdate      Event = "like_update"
	EventError           Event = "error"

	// Lifecycle events raised by the Conn itself, never sent on the wire.
	EventConnect      Event = "connect"
	EventDisconnect   Event = "disconnect"
	EventConnectError Event = "connect_error"
)

// Envelope wraps every wire message with its event name.
type Envelope struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope builds an envelope with the payload marshaled in place.
func NewEnvelope(event Event, data any) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Envelope{Event: event, Data: raw}, nil
}

type RoomPayload struct {
	Sport domain.Sport `json:"sport"`
}

type SendMessagePayload struct {
	Sport   domain.Sport `json:"sport"`
	Message string       `json:"message"`
}

type AddLikesPayload struct {
	Sport      domain.Sport      `json:"sport"`
	University domain.University `json:"university"`
	Likes      int               `json:"likes"`
}

type ReceiveMessagePayload struct {
	Message domain.Chat `json:"message"`
}

type MessageFilteredPayload struct {
	FilteredMessage struct {
		ID    string       `json:"id"`
		Sport domain.Sport `json:"sport"`
	} `json:"filteredMessage"`
}

type CheerUpdatePayload struct {
	Cheer domain.Cheer `json:"cheer"`
}

type LikeUpdatePayload struct {
	Like domain.Like `json:"like"`
}

// ErrorPayload carries the structured error of an "error" envelope.
type ErrorPayload struct {
	Message apierr.APIError `json:"message"`
}

// ConnectErrorPayload carries a JSON-stringified APIError, matching what
// the transport hands to connect_error subscribers.
type ConnectErrorPayload struct {
	Message string `json:"message"`
}
