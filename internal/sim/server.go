package sim

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server bundles the simulator's state, session secret and websocket hubs
// behind one http.Handler.
type Server struct {
	state  *state
	secret []byte
	log    *zap.Logger
	hubs   map[string]*hub
}

func New(log *zap.Logger) *Server {
	s := &Server{
		state:  newState(),
		secret: newSecret(),
		log:    log.Named("sim"),
		hubs:   make(map[string]*hub),
	}
	for _, ns := range []string{"chat", "cheer", "like"} {
		s.hubs[ns] = newHub(ns, s.log)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/refresh", s.handleRefresh)
	r.Get("/health", s.handleHealth)

	r.Get("/chat/messages", s.handleListMessages)
	r.Get("/cheer", s.handleGetCheer)
	r.Get("/like", s.handleGetLike)
	r.Get("/score", s.handleGetScore)
	r.Get("/gift", s.handleListGifts)
	r.Get("/player", s.handleListPlayers)
	r.Get("/live-url", s.handleListLiveURLs)
	r.Get("/bet-question", s.handleGetQuestion)
	r.Get("/bet-question/all", s.handleAllQuestions)
	r.Get("/match-record", s.handleListMatchRecords)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/user", s.handleMe)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireSession)

		r.Delete("/chat/{id}", s.handleDeleteMessage)
		r.Post("/cheer/reset", s.handleResetCheer)
		r.Post("/like/reset", s.handleResetLike)

		r.Post("/score/start", s.handleScoreStart)
		r.Post("/score/end", s.handleScoreEnd)
		r.Post("/score/reset", s.handleScoreReset)
		r.Post("/score/update", s.handleScoreUpdate)

		r.Post("/gift", s.handleCreateGift)
		r.Patch("/gift/{id}", s.handleUpdateGift)
		r.Delete("/gift/{id}", s.handleDeleteGift)
		r.Post("/gift/{id}/raffle", s.handleRaffle)

		r.Post("/player", s.handleCreatePlayer)
		r.Patch("/player/{id}", s.handleUpdatePlayer)
		r.Delete("/player/{id}", s.handleDeletePlayer)

		r.Post("/live-url", s.handleCreateLiveURL)
		r.Patch("/live-url/{id}", s.handleUpdateLiveURL)
		r.Delete("/live-url/{id}", s.handleDeleteLiveURL)

		r.Patch("/bet-question", s.handleUpdateQuestion)
		r.Patch("/bet-question/answer", s.handleSetAnswer)

		r.Post("/match-record", s.handleCreateMatchRecord)
		r.Patch("/match-record/{id}", s.handleUpdateMatchRecord)
		r.Delete("/match-record/{id}", s.handleDeleteMatchRecord)

		r.Get("/user", s.handleListUsers)
		r.Get("/user/summary", s.handleUserSummary)
		r.Post("/ticket/increment", s.handleIncrementTicket)
	})

	r.Get("/ws/{namespace}", s.handleWebsocket)

	return r
}
