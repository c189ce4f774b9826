package sim

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/toky-team/toky-admin/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sportParam(r *http.Request) (domain.Sport, bool) {
	sport := domain.Sport(r.URL.Query().Get("sport"))
	return sport, sport.Valid()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, domain.Health{Status: "ok"})
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	sport, ok := sportParam(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}
	page := s.state.pageChats(sport, limit, r.URL.Query().Get("cursor"))
	writeJSON(w, http.StatusOK, page)
}

// handleDeleteMessage soft-deletes and tells the sport's room the message
// was filtered, mirroring the production moderation flow.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sport, ok := s.state.deleteChat(id)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "message not found")
		return
	}
	s.broadcastFiltered(sport, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCheer(w http.ResponseWriter, r *http.Request) {
	sport, ok := sportParam(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	s.state.mu.Lock()
	cheer := *s.state.cheers[sport]
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, cheer)
}

func (s *Server) handleResetCheer(w http.ResponseWriter, r *http.Request) {
	sport, ok := sportParam(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	s.state.mu.Lock()
	c := s.state.cheers[sport]
	c.KULike, c.YULike = 0, 0
	cheer := *c
	s.state.mu.Unlock()
	s.broadcastCheer(cheer)
	writeJSON(w, http.StatusOK, cheer)
}

func (s *Server) handleGetLike(w http.ResponseWriter, r *http.Request) {
	sport, ok := sportParam(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	s.state.mu.Lock()
	like := *s.state.likes[sport]
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, like)
}

func (s *Server) handleResetLike(w http.ResponseWriter, r *http.Request) {
	sport, ok := sportParam(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	s.state.mu.Lock()
	l := s.state.likes[sport]
	l.KULike, l.YULike = 0, 0
	like := *l
	s.state.mu.Unlock()
	s.broadcastLike(like)
	writeJSON(w, http.StatusOK, like)
}

func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	sport, ok := sportParam(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	s.state.mu.Lock()
	score := *s.state.scores[sport]
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) mutateScore(w http.ResponseWriter, r *http.Request, f func(*domain.Score)) {
	sport, ok := sportParam(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	s.state.mu.Lock()
	sc := s.state.scores[sport]
	f(sc)
	score := *sc
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleScoreStart(w http.ResponseWriter, r *http.Request) {
	s.mutateScore(w, r, func(sc *domain.Score) { sc.MatchStatus = domain.MatchPlaying })
}

func (s *Server) handleScoreEnd(w http.ResponseWriter, r *http.Request) {
	s.mutateScore(w, r, func(sc *domain.Score) { sc.MatchStatus = domain.MatchFinish })
}

func (s *Server) handleScoreReset(w http.ResponseWriter, r *http.Request) {
	s.mutateScore(w, r, func(sc *domain.Score) {
		sc.KUScore, sc.YUScore = 0, 0
		sc.MatchStatus = domain.MatchBefore
	})
}

func (s *Server) handleScoreUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		KUScore int `json:"kuScore"`
		YUScore int `json:"yuScore"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	s.mutateScore(w, r, func(sc *domain.Score) {
		sc.KUScore, sc.YUScore = body.KUScore, body.YUScore
	})
}

func (s *Server) handleListGifts(w http.ResponseWriter, _ *http.Request) {
	s.state.mu.Lock()
	gifts := make([]domain.Gift, 0, len(s.state.gifts))
	for _, g := range s.state.gifts {
		gifts = append(gifts, *g)
	}
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, gifts)
}

func (s *Server) handleCreateGift(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	ticket, _ := strconv.Atoi(r.FormValue("requiredTicket"))
	g := &domain.Gift{
		ID:             newID(),
		Name:           r.FormValue("name"),
		Alias:          r.FormValue("alias"),
		RequiredTicket: ticket,
		ImageURL:       "/images/" + newID(),
	}
	s.state.mu.Lock()
	s.state.gifts = append(s.state.gifts, g)
	s.state.mu.Unlock()
	writeJSON(w, http.StatusCreated, *g)
}

func (s *Server) handleUpdateGift(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	id := chi.URLParam(r, "id")
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, g := range s.state.gifts {
		if g.ID != id {
			continue
		}
		if v := r.FormValue("name"); v != "" {
			g.Name = v
		}
		if v := r.FormValue("alias"); v != "" {
			g.Alias = v
		}
		if v := r.FormValue("requiredTicket"); v != "" {
			g.RequiredTicket, _ = strconv.Atoi(v)
		}
		writeJSON(w, http.StatusOK, *g)
		return
	}
	s.writeError(w, r, http.StatusNotFound, "gift not found")
}

func (s *Server) handleDeleteGift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for i, g := range s.state.gifts {
		if g.ID == id {
			s.state.gifts = append(s.state.gifts[:i], s.state.gifts[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	s.writeError(w, r, http.StatusNotFound, "gift not found")
}

func (s *Server) handleRaffle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RaffleCount    int      `json:"raffleCount"`
		ExcludeDrawIDs []string `json:"excludeDrawIds"`
		IncludeAdmin   bool     `json:"includeAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RaffleCount <= 0 {
		s.writeError(w, r, http.StatusBadRequest, "raffleCount must be positive")
		return
	}
	results := s.state.drawRaffle(chi.URLParam(r, "id"), body.RaffleCount, body.ExcludeDrawIDs, body.IncludeAdmin)
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	sport := domain.Sport(r.URL.Query().Get("sport"))
	uni := domain.University(r.URL.Query().Get("university"))
	s.state.mu.Lock()
	players := make([]domain.Player, 0, len(s.state.players))
	for _, p := range s.state.players {
		if sport != "" && p.Sport != sport {
			continue
		}
		if uni != "" && p.University != uni {
			continue
		}
		players = append(players, *p)
	}
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, players)
}

func playerFromForm(r *http.Request) domain.Player {
	backNumber, _ := strconv.Atoi(r.FormValue("backNumber"))
	p := domain.Player{
		Name:       r.FormValue("name"),
		University: domain.University(r.FormValue("university")),
		Sport:      domain.Sport(r.FormValue("sport")),
		Department: r.FormValue("department"),
		Position:   r.FormValue("position"),
		BackNumber: backNumber,
		IsPrimary:  r.FormValue("isPrimary") == "true",
	}
	if v := r.FormValue("birth"); v != "" {
		p.Birth = &v
	}
	if v := r.FormValue("height"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			p.Height = &f
		}
	}
	if v := r.FormValue("weight"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			p.Weight = &f
		}
	}
	if v := r.FormValue("careers"); v != "" {
		_ = json.Unmarshal([]byte(v), &p.Careers)
	}
	return p
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	p := playerFromForm(r)
	if !p.Sport.Valid() || !p.University.Valid() {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport or university")
		return
	}
	p.ID = newID()
	p.ImageURL = "/images/" + newID()
	s.state.mu.Lock()
	s.state.players = append(s.state.players, &p)
	s.state.mu.Unlock()
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	id := chi.URLParam(r, "id")
	updated := playerFromForm(r)
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, p := range s.state.players {
		if p.ID != id {
			continue
		}
		updated.ID = p.ID
		updated.ImageURL = p.ImageURL
		updated.LikeCount = p.LikeCount
		*p = updated
		writeJSON(w, http.StatusOK, *p)
		return
	}
	s.writeError(w, r, http.StatusNotFound, "player not found")
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for i, p := range s.state.players {
		if p.ID == id {
			s.state.players = append(s.state.players[:i], s.state.players[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	s.writeError(w, r, http.StatusNotFound, "player not found")
}

func (s *Server) handleListLiveURLs(w http.ResponseWriter, r *http.Request) {
	sport, ok := sportParam(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	s.state.mu.Lock()
	urls := make([]domain.LiveURL, 0)
	for _, u := range s.state.liveURLs {
		if u.Sport == sport {
			urls = append(urls, *u)
		}
	}
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, urls)
}

func (s *Server) handleCreateLiveURL(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sport         domain.Sport `json:"sport"`
		BroadcastName string       `json:"broadcastName"`
		URL           string       `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Sport.Valid() {
		s.writeError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	u := &domain.LiveURL{ID: newID(), Sport: body.Sport, BroadcastName: body.BroadcastName, URL: body.URL}
	s.state.mu.Lock()
	s.state.liveURLs = append(s.state.liveURLs, u)
	s.state.mu.Unlock()
	writeJSON(w, http.StatusCreated, *u)
}

func (s *Server) handleUpdateLiveURL(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BroadcastName *string `json:"broadcastName"`
		URL           *string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	id := chi.URLParam(r, "id")
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, u := range s.state.liveURLs {
		if u.ID != id {
			continue
		}
		if body.BroadcastName != nil {
			u.BroadcastName = *body.BroadcastName
		}
		if body.URL != nil {
			u.URL = *body.URL
		}
		writeJSON(w, http.StatusOK, *u)
		return
	}
	s.writeError(w, r, http.StatusNotFound, "live url not found")
}

func (s *Server) handleDeleteLiveURL(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for i, u := range s.state.liveURLs {
		if u.ID == id {
			s.state.liveURLs = append(s.state.liveURLs[:i], s.state.liveURLs[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	s.writeError(w, r, http.StatusNotFound, "live url not found")
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	sport, ok := sportParam(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	s.state.mu.Lock()
	q := *s.state.questions[sport]
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleAllQuestions(w http.ResponseWriter, _ *http.Request) {
	s.state.mu.Lock()
	qs := make([]domain.BetQuestion, 0, len(s.state.questions))
	for _, sport := range domain.AllSports() {
		qs = append(qs, *s.state.questions[sport])
	}
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, qs)
}

func (s *Server) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sport          domain.Sport `json:"sport"`
		Question       string       `json:"question"`
		PositionFilter *string      `json:"positionFilter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Sport.Valid() {
		s.writeError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	s.state.mu.Lock()
	q := s.state.questions[body.Sport]
	q.Question = body.Question
	q.PositionFilter = body.PositionFilter
	out := *q
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetAnswer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Sport  domain.Sport           `json:"sport"`
		Answer *domain.QuestionAnswer `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Sport.Valid() {
		s.writeError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	s.state.mu.Lock()
	q := s.state.questions[body.Sport]
	q.Answer = body.Answer
	out := *q
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListMatchRecords(w http.ResponseWriter, r *http.Request) {
	sport, ok := sportParam(r)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	s.state.mu.Lock()
	records := make([]domain.MatchRecord, 0)
	for _, m := range s.state.matchRecords {
		if m.Sport == sport {
			records = append(records, *m)
		}
	}
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleCreateMatchRecord(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	m := &domain.MatchRecord{
		ID:       newID(),
		Sport:    domain.Sport(r.FormValue("sport")),
		League:   r.FormValue("league"),
		Result:   r.FormValue("result"),
		ImageURL: "/images/" + newID(),
	}
	if !m.Sport.Valid() {
		s.writeError(w, r, http.StatusBadRequest, "invalid sport")
		return
	}
	s.state.mu.Lock()
	s.state.matchRecords = append(s.state.matchRecords, m)
	s.state.mu.Unlock()
	writeJSON(w, http.StatusCreated, *m)
}

func (s *Server) handleUpdateMatchRecord(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	id := chi.URLParam(r, "id")
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, m := range s.state.matchRecords {
		if m.ID != id {
			continue
		}
		if v := r.FormValue("league"); v != "" {
			m.League = v
		}
		if v := r.FormValue("result"); v != "" {
			m.Result = v
		}
		writeJSON(w, http.StatusOK, *m)
		return
	}
	s.writeError(w, r, http.StatusNotFound, "match record not found")
}

func (s *Server) handleDeleteMatchRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for i, m := range s.state.matchRecords {
		if m.ID == id {
			s.state.matchRecords = append(s.state.matchRecords[:i], s.state.matchRecords[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	s.writeError(w, r, http.StatusNotFound, "match record not found")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, u := range s.state.users {
		if u.ID == userID {
			writeJSON(w, http.StatusOK, *u)
			return
		}
	}
	s.writeError(w, r, http.StatusNotFound, "user not found")
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	s.state.mu.Lock()
	users := make([]domain.User, 0, len(s.state.users))
	for _, u := range s.state.users {
		users = append(users, *u)
	}
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleUserSummary(w http.ResponseWriter, _ *http.Request) {
	s.state.mu.Lock()
	summary := domain.UserSummary{TotalUsers: len(s.state.users)}
	for _, u := range s.state.users {
		switch u.University {
		case domain.KoreaUniversity:
			summary.KUUsers++
		case domain.YonseiUniversity:
			summary.YUUsers++
		}
		summary.TotalTicket += u.Ticket
	}
	s.state.mu.Unlock()
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleIncrementTicket(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Count  int    `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid body")
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	for _, u := range s.state.users {
		if u.ID == body.UserID {
			u.Ticket += body.Count
			writeJSON(w, http.StatusOK, *u)
			return
		}
	}
	s.writeError(w, r, http.StatusNotFound, "user not found")
}
