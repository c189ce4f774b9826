// Package sim is an in-memory double of the platform backend, covering the
// REST surface and the chat/cheer/like websocket namespaces. It exists for
// development and integration tests and makes no durability or correctness
// promises beyond what those need.
package sim

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/toky-team/toky-admin/internal/domain"
)

type state struct {
	mu sync.Mutex

	chats        map[domain.Sport][]domain.Chat // newest first
	cheers       map[domain.Sport]*domain.Cheer
	likes        map[domain.Sport]*domain.Like
	scores       map[domain.Sport]*domain.Score
	questions    map[domain.Sport]*domain.BetQuestion
	players      []*domain.Player
	gifts        []*domain.Gift
	liveURLs     []*domain.LiveURL
	matchRecords []*domain.MatchRecord
	users        []*domain.User
	draws        map[string]map[string]string // giftID -> drawID -> userID

	bannedWords []string
}

func newState() *state {
	s := &state{
		chats:       make(map[domain.Sport][]domain.Chat),
		cheers:      make(map[domain.Sport]*domain.Cheer),
		likes:       make(map[domain.Sport]*domain.Like),
		scores:      make(map[domain.Sport]*domain.Score),
		questions:   make(map[domain.Sport]*domain.BetQuestion),
		draws:       make(map[string]map[string]string),
		bannedWords: []string{"spam", "욕설"},
	}
	now := time.Now()
	for _, sport := range domain.AllSports() {
		s.cheers[sport] = &domain.Cheer{Sport: sport, CreatedAt: now, UpdatedAt: now}
		s.likes[sport] = &domain.Like{Sport: sport, CreatedAt: now, UpdatedAt: now}
		s.scores[sport] = &domain.Score{Sport: sport, MatchStatus: domain.MatchBefore}
		s.questions[sport] = &domain.BetQuestion{Sport: sport, Question: "승부 예측"}
	}
	s.gifts = append(s.gifts,
		&domain.Gift{ID: newID(), Name: "응원 타월", Alias: "towel", RequiredTicket: 1, ImageURL: "/images/towel"},
		&domain.Gift{ID: newID(), Name: "유니폼", Alias: "uniform", RequiredTicket: 5, ImageURL: "/images/uniform"},
	)
	s.players = append(s.players,
		&domain.Player{ID: newID(), Name: "김선수", University: domain.KoreaUniversity, Sport: domain.Football, Position: "FW", BackNumber: 9, IsPrimary: true},
		&domain.Player{ID: newID(), Name: "이선수", University: domain.YonseiUniversity, Sport: domain.Football, Position: "GK", BackNumber: 1},
	)
	for i := 0; i < 20; i++ {
		uni := domain.KoreaUniversity
		if i%2 == 1 {
			uni = domain.YonseiUniversity
		}
		s.users = append(s.users, &domain.User{
			ID:          newID(),
			Username:    fmt.Sprintf("user%02d", i),
			PhoneNumber: fmt.Sprintf("010-0000-%04d", i),
			University:  uni,
			Ticket:      i % 5,
		})
	}
	return s
}

func newID() string {
	return ulid.Make().String()
}

// appendChat stores a message for a sport at the head of its list.
func (s *state) appendChat(c domain.Chat) {
	s.mu.Lock()
	s.chats[c.Sport] = append([]domain.Chat{c}, s.chats[c.Sport]...)
	s.mu.Unlock()
}

// pageChats returns a newest-first page. The cursor is the ID of the last
// item of the previous page.
func (s *state) pageChats(sport domain.Sport, limit int, cursor string) domain.Paginated[domain.Chat] {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.chats[sport]
	start := 0
	if cursor != "" {
		for i, c := range all {
			if c.ID == cursor {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	items := make([]domain.Chat, end-start)
	copy(items, all[start:end])

	page := domain.Paginated[domain.Chat]{Items: items, HasNext: end < len(all)}
	if len(items) > 0 && page.HasNext {
		page.NextCursor = items[len(items)-1].ID
	}
	return page
}

// deleteChat soft-deletes by ID across sports. Returns the sport of the
// deleted message so the websocket side can notify its room.
func (s *state) deleteChat(id string) (domain.Sport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for sport, list := range s.chats {
		for i := range list {
			if list[i].ID == id {
				list[i].DeletedAt = &now
				return sport, true
			}
		}
	}
	return "", false
}

func (s *state) filtered(content string) bool {
	lowered := strings.ToLower(content)
	for _, w := range s.bannedWords {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}

// drawRaffle picks count random users not excluded by previous draw IDs
// for this gift.
func (s *state) drawRaffle(giftID string, count int, excludeDrawIDs []string, includeAdmin bool) []domain.RaffleResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	drawn := s.draws[giftID]
	if drawn == nil {
		drawn = make(map[string]string)
		s.draws[giftID] = drawn
	}
	excludedUsers := make(map[string]struct{})
	for _, drawID := range excludeDrawIDs {
		if userID, ok := drawn[drawID]; ok {
			excludedUsers[userID] = struct{}{}
		}
	}

	var pool []*domain.User
	for _, u := range s.users {
		if _, out := excludedUsers[u.ID]; out {
			continue
		}
		if u.IsAdmin && !includeAdmin {
			continue
		}
		pool = append(pool, u)
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count > len(pool) {
		count = len(pool)
	}

	results := make([]domain.RaffleResult, 0, count)
	for _, u := range pool[:count] {
		drawID := newID()
		drawn[drawID] = u.ID
		results = append(results, domain.RaffleResult{
			DrawID:      drawID,
			UserID:      u.ID,
			Username:    u.Username,
			PhoneNumber: u.PhoneNumber,
			University:  u.University,
		})
	}
	return results
}
