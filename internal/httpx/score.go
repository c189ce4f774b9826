package httpx

import (
	"context"
	"fmt"
	"net/http"

	"github.com/toky-team/toky-admin/internal/domain"
)

func (c *Client) GetScore(ctx context.Context, sport domain.Sport) (domain.Score, error) {
	var score domain.Score
	err := c.getJSON(ctx, "/score", sportQuery(sport), &score)
	return score, err
}

func (c *Client) StartMatch(ctx context.Context, sport domain.Sport) (domain.Score, error) {
	return c.scoreAction(ctx, "/admin/score/start", sport)
}

func (c *Client) EndMatch(ctx context.Context, sport domain.Sport) (domain.Score, error) {
	return c.scoreAction(ctx, "/admin/score/end", sport)
}

func (c *Client) ResetMatch(ctx context.Context, sport domain.Sport) (domain.Score, error) {
	return c.scoreAction(ctx, "/admin/score/reset", sport)
}

func (c *Client) scoreAction(ctx context.Context, path string, sport domain.Sport) (domain.Score, error) {
	var score domain.Score
	err := c.do(ctx, http.MethodPost, path, sportQuery(sport), "", nil, &score)
	return score, err
}

// UpdateScore sets both scores. Negative values are rejected before any
// network call.
func (c *Client) UpdateScore(ctx context.Context, sport domain.Sport, kuScore, yuScore int) (domain.Score, error) {
	if kuScore < 0 || yuScore < 0 {
		return domain.Score{}, fmt.Errorf("scores must be non-negative, got %d:%d", kuScore, yuScore)
	}
	body := struct {
		KUScore int `json:"kuScore"`
		YUScore int `json:"yuScore"`
	}{kuScore, yuScore}
	var score domain.Score
	err := c.postJSON(ctx, "/admin/score/update", sportQuery(sport), body, &score)
	return score, err
}
