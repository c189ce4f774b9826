// Package domain holds the shared wire types of the Toky sports-event
// platform: sports, universities, chat messages, counters, scores, rosters
// and raffle results. Field names and JSON tags follow the remote API.
package domain

import "time"

// Sport is the partition key for rooms, pagination and scoreboards.
// Values are the platform's Korean identifiers, used verbatim on the wire.
type Sport string

const (
	Football   Sport = "축구"
	Basketball Sport = "농구"
	Baseball   Sport = "야구"
	Rugby      Sport = "럭비"
	IceHockey  Sport = "아이스하키"
)

// AllSports returns every sport in scoreboard order.
func AllSports() []Sport {
	return []Sport{Football, Basketball, Baseball, Rugby, IceHockey}
}

func (s Sport) Valid() bool {
	switch s {
	case Football, Basketball, Baseball, Rugby, IceHockey:
		return true
	}
	return false
}

type University string

const (
	KoreaUniversity  University = "고려대학교"
	YonseiUniversity University = "연세대학교"
)

func (u University) Valid() bool {
	return u == KoreaUniversity || u == YonseiUniversity
}

type MatchStatus string

const (
	MatchBefore  MatchStatus = "before"
	MatchPlaying MatchStatus = "playing"
	MatchFinish  MatchStatus = "finish"
)

type MatchResult string

const (
	ResultKUWin MatchResult = "KU_WIN"
	ResultYUWin MatchResult = "YU_WIN"
	ResultDraw  MatchResult = "DRAW"
)

// Chat is one chat message. DeletedAt is set by the server when a message
// has been filtered or removed; a non-nil DeletedAt must never be shown as
// live content.
type Chat struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	UserID     string     `json:"userId"`
	Username   string     `json:"username"`
	University University `json:"university"`
	Sport      Sport      `json:"sport"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"deletedAt"`

	// Deleted marks a message the client knows to be removed (filtered set
	// or server DeletedAt). Set by feed projections, never by the server.
	Deleted bool `json:"-"`
}

// Removed reports whether the server considers the message gone.
func (c Chat) Removed() bool { return c.DeletedAt != nil }

// Cheer is the per-sport cheer counter pair.
type Cheer struct {
	Sport     Sport     `json:"sport"`
	KULike    int       `json:"KULike"`
	YULike    int       `json:"YULike"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Like mirrors Cheer on the like namespace.
type Like struct {
	Sport     Sport     `json:"sport"`
	KULike    int       `json:"KULike"`
	YULike    int       `json:"YULike"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Score struct {
	Sport       Sport       `json:"sport"`
	KUScore     int         `json:"KUScore"`
	YUScore     int         `json:"YUScore"`
	MatchStatus MatchStatus `json:"matchStatus"`
}

type Player struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	University University `json:"university"`
	Sport      Sport      `json:"sport"`
	Department string     `json:"department"`
	Birth      *string    `json:"birth"`
	Height     *float64   `json:"height"`
	Weight     *float64   `json:"weight"`
	Position   string     `json:"position"`
	BackNumber int        `json:"backNumber"`
	Careers    []string   `json:"careers"`
	ImageURL   string     `json:"imageUrl"`
	LikeCount  int        `json:"likeCount"`
	IsPrimary  bool       `json:"isPrimary"`
}

type Gift struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Alias          string `json:"alias"`
	RequiredTicket int    `json:"requiredTicket"`
	ImageURL       string `json:"imageUrl"`
}

type LiveURL struct {
	ID            string `json:"id"`
	Sport         Sport  `json:"sport"`
	BroadcastName string `json:"broadcastName"`
	URL           string `json:"url"`
}

// PredictAnswer is the match-outcome part of a bet-question answer.
type PredictAnswer struct {
	MatchResult MatchResult `json:"matchResult"`
	Score       struct {
		KUScore int `json:"kuScore"`
		YUScore int `json:"yuScore"`
	} `json:"score"`
}

type PlayerAnswer struct {
	PlayerID []string `json:"playerId"`
}

type QuestionAnswer struct {
	Predict  PredictAnswer `json:"predict"`
	KUPlayer PlayerAnswer  `json:"kuPlayer"`
	YUPlayer PlayerAnswer  `json:"yuPlayer"`
}

type BetQuestion struct {
	Sport          Sport           `json:"sport"`
	Question       string          `json:"question"`
	PositionFilter *string         `json:"positionFilter"`
	Answer         *QuestionAnswer `json:"answer"`
}

type RaffleResult struct {
	DrawID      string     `json:"drawId"`
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	PhoneNumber string     `json:"phoneNumber"`
	University  University `json:"university"`
}

type MatchRecord struct {
	ID       string `json:"id"`
	Sport    Sport  `json:"sport"`
	League   string `json:"league"`
	Result   string `json:"result"`
	ImageURL string `json:"imageUrl"`
}

type User struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	PhoneNumber string     `json:"phoneNumber"`
	University  University `json:"university"`
	Ticket      int        `json:"ticket"`
	IsAdmin     bool       `json:"isAdmin"`
}

type UserSummary struct {
	TotalUsers  int `json:"totalUsers"`
	KUUsers     int `json:"kuUsers"`
	YUUsers     int `json:"yuUsers"`
	TotalTicket int `json:"totalTicket"`
}

type Health struct {
	Status string `json:"status"`
}

// Paginated is one page of a cursor-paginated listing. NextCursor is an
// opaque server token; empty means the server sent none.
type Paginated[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor"`
	HasNext    bool   `json:"hasNext"`
}
