package sim

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/toky-team/toky-admin/internal/apierr"
	"github.com/toky-team/toky-admin/internal/domain"
	"github.com/toky-team/toky-admin/internal/realtime"
)

type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// hub tracks room membership for one namespace and fans events out to the
// room. Slow clients are dropped rather than blocking the broadcast.
type hub struct {
	ns  string
	log *zap.Logger

	mu    sync.Mutex
	rooms map[domain.Sport]map[*wsClient]struct{}
}

func newHub(ns string, log *zap.Logger) *hub {
	return &hub{
		ns:    ns,
		log:   log.With(zap.String("namespace", ns)),
		rooms: make(map[domain.Sport]map[*wsClient]struct{}),
	}
}

func (h *hub) join(sport domain.Sport, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[sport] == nil {
		h.rooms[sport] = make(map[*wsClient]struct{})
	}
	h.rooms[sport][c] = struct{}{}
}

func (h *hub) leave(sport domain.Sport, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[sport], c)
}

func (h *hub) leaveAll(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, members := range h.rooms {
		delete(members, c)
	}
}

func (h *hub) broadcast(sport domain.Sport, event realtime.Event, payload any) {
	env, err := realtime.NewEnvelope(event, payload)
	if err != nil {
		h.log.Warn("broadcast encode failed", zap.Error(err))
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[sport] {
		select {
		case c.send <- data:
		default:
			delete(h.rooms[sport], c)
			close(c.send)
		}
	}
}

func (s *Server) broadcastFiltered(sport domain.Sport, id string) {
	var p realtime.MessageFilteredPayload
	p.FilteredMessage.ID = id
	p.FilteredMessage.Sport = sport
	s.hubs["chat"].broadcast(sport, realtime.EventMessageFiltered, p)
}

func (s *Server) broadcastCheer(cheer domain.Cheer) {
	s.hubs["cheer"].broadcast(cheer.Sport, realtime.EventCheerUpdate, realtime.CheerUpdatePayload{Cheer: cheer})
}

func (s *Server) broadcastLike(like domain.Like) {
	s.hubs["like"].broadcast(like.Sport, realtime.EventLikeUpdate, realtime.LikeUpdatePayload{Like: like})
}

// handleWebsocket upgrades one namespace connection. The session cookie is
// required; handshake rejections carry the structured error body so the
// client's connect_error path has something to parse.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ns := chi.URLParam(r, "namespace")
	h, ok := s.hubs[ns]
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "unknown namespace")
		return
	}
	userID, ok := s.sessionUser(r)
	if !ok {
		s.writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	c := &wsClient{conn: conn, send: make(chan []byte, 32), userID: userID}

	writeCtx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for data := range c.send {
			ctx, cancelWrite := context.WithTimeout(writeCtx, 3*time.Second)
			_ = conn.Write(ctx, websocket.MessageText, data)
			cancelWrite()
		}
	}()

	defer h.leaveAll(c)
	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				s.log.Debug("ws read ended", zap.String("namespace", ns), zap.Error(err))
			}
			return
		}

		var env realtime.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.sendError(c, http.StatusBadRequest, "malformed envelope")
			continue
		}
		s.handleEvent(h, c, env)
	}
}

func (s *Server) handleEvent(h *hub, c *wsClient, env realtime.Envelope) {
	switch env.Event {
	case realtime.EventJoinRoom:
		var p realtime.RoomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !p.Sport.Valid() {
			s.sendError(c, http.StatusBadRequest, "invalid room")
			return
		}
		h.join(p.Sport, c)

	case realtime.EventLeaveRoom:
		var p realtime.RoomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !p.Sport.Valid() {
			s.sendError(c, http.StatusBadRequest, "invalid room")
			return
		}
		h.leave(p.Sport, c)

	case realtime.EventSendMessage:
		if h.ns != "chat" {
			s.sendError(c, http.StatusBadRequest, "send_message is chat-only")
			return
		}
		var p realtime.SendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !p.Sport.Valid() || p.Message == "" {
			s.sendError(c, http.StatusBadRequest, "invalid message")
			return
		}
		s.acceptMessage(h, c, p)

	case realtime.EventAddCheer, realtime.EventAddLike:
		var p realtime.AddLikesPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !p.Sport.Valid() || !p.University.Valid() || p.Likes <= 0 {
			s.sendError(c, http.StatusBadRequest, "invalid likes payload")
			return
		}
		s.addLikes(env.Event, p)

	default:
		s.sendError(c, http.StatusBadRequest, "unknown event")
	}
}

func (s *Server) acceptMessage(h *hub, c *wsClient, p realtime.SendMessagePayload) {
	now := time.Now().UTC()
	chat := domain.Chat{
		ID:        newID(),
		Content:   p.Message,
		UserID:    c.userID,
		Sport:     p.Sport,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.state.mu.Lock()
	for _, u := range s.state.users {
		if u.ID == c.userID {
			chat.Username = u.Username
			chat.University = u.University
			break
		}
	}
	s.state.mu.Unlock()

	if s.state.filtered(p.Message) {
		chat.DeletedAt = &now
		s.state.appendChat(chat)
		s.broadcastFiltered(p.Sport, chat.ID)
		return
	}
	s.state.appendChat(chat)
	h.broadcast(p.Sport, realtime.EventReceiveMessage, realtime.ReceiveMessagePayload{Message: chat})
}

func (s *Server) addLikes(event realtime.Event, p realtime.AddLikesPayload) {
	s.state.mu.Lock()
	if event == realtime.EventAddCheer {
		counter := s.state.cheers[p.Sport]
		if p.University == domain.KoreaUniversity {
			counter.KULike += p.Likes
		} else {
			counter.YULike += p.Likes
		}
		counter.UpdatedAt = time.Now()
		cheer := *counter
		s.state.mu.Unlock()
		s.broadcastCheer(cheer)
		return
	}
	counter := s.state.likes[p.Sport]
	if p.University == domain.KoreaUniversity {
		counter.KULike += p.Likes
	} else {
		counter.YULike += p.Likes
	}
	counter.UpdatedAt = time.Now()
	like := *counter
	s.state.mu.Unlock()
	s.broadcastLike(like)
}

func (s *Server) sendError(c *wsClient, status int, msg string) {
	env, err := realtime.NewEnvelope(realtime.EventError, realtime.ErrorPayload{
		Message: apierr.APIError{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Status:    status,
			ErrorName: http.StatusText(status),
			Message:   msg,
		},
	})
	if err != nil {
		return
	}
	data, _ := json.Marshal(env)
	select {
	case c.send <- data:
	default:
	}
}
