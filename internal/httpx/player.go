package httpx

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/toky-team/toky-admin/internal/domain"
)

// ListPlayers lists the roster, optionally filtered by sport and/or
// university (zero values mean no filter).
func (c *Client) ListPlayers(ctx context.Context, sport domain.Sport, university domain.University) ([]domain.Player, error) {
	q := url.Values{}
	if sport != "" {
		q.Set("sport", string(sport))
	}
	if university != "" {
		q.Set("university", string(university))
	}
	var players []domain.Player
	err := c.getJSON(ctx, "/player", q, &players)
	return players, err
}

type PlayerParams struct {
	Name       string
	University domain.University
	Sport      domain.Sport
	Department string
	Birth      *string
	Height     *float64
	Weight     *float64
	Position   string
	BackNumber int
	Careers    []string
	IsPrimary  bool
	Image      *Upload
}

func playerFields(p PlayerParams) ([]formField, error) {
	careers := p.Careers
	if careers == nil {
		careers = []string{}
	}
	careersJSON, err := json.Marshal(careers)
	if err != nil {
		return nil, err
	}
	fields := []formField{
		{"name", p.Name},
		{"university", string(p.University)},
		{"sport", string(p.Sport)},
		{"department", p.Department},
		{"birth", strOrEmpty(p.Birth)},
		{"height", floatOrEmpty(p.Height)},
		{"weight", floatOrEmpty(p.Weight)},
		{"position", p.Position},
		{"backNumber", strconv.Itoa(p.BackNumber)},
		{"careers", string(careersJSON)},
	}
	if p.IsPrimary {
		fields = append(fields, formField{"isPrimary", "true"})
	} else {
		fields = append(fields, formField{"isPrimary", ""})
	}
	return fields, nil
}

func (c *Client) CreatePlayer(ctx context.Context, p PlayerParams) (domain.Player, error) {
	fields, err := playerFields(p)
	if err != nil {
		return domain.Player{}, err
	}
	var player domain.Player
	err = c.postForm(ctx, "/admin/player", fields, p.Image, &player)
	return player, err
}

// UpdatePlayer replaces a player's fields; the image is optional and kept
// server-side when absent.
func (c *Client) UpdatePlayer(ctx context.Context, playerID string, p PlayerParams) (domain.Player, error) {
	fields, err := playerFields(p)
	if err != nil {
		return domain.Player{}, err
	}
	var player domain.Player
	err = c.patchForm(ctx, "/admin/player/"+url.PathEscape(playerID), fields, p.Image, &player)
	return player, err
}

func (c *Client) DeletePlayer(ctx context.Context, playerID string) error {
	return c.delete(ctx, "/admin/player/"+url.PathEscape(playerID))
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
