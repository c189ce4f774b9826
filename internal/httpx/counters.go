package httpx

import (
	"context"
	"net/http"
	"net/url"

	"github.com/toky-team/toky-admin/internal/domain"
)

func sportQuery(sport domain.Sport) url.Values {
	q := url.Values{}
	q.Set("sport", string(sport))
	return q
}

func (c *Client) GetCheer(ctx context.Context, sport domain.Sport) (domain.Cheer, error) {
	var cheer domain.Cheer
	err := c.getJSON(ctx, "/cheer", sportQuery(sport), &cheer)
	return cheer, err
}

// ResetCheer zeroes both universities' cheer counters for a sport.
func (c *Client) ResetCheer(ctx context.Context, sport domain.Sport) (domain.Cheer, error) {
	var cheer domain.Cheer
	err := c.do(ctx, http.MethodPost, "/admin/cheer/reset", sportQuery(sport), "", nil, &cheer)
	return cheer, err
}

func (c *Client) GetLike(ctx context.Context, sport domain.Sport) (domain.Like, error) {
	var like domain.Like
	err := c.getJSON(ctx, "/like", sportQuery(sport), &like)
	return like, err
}

func (c *Client) ResetLike(ctx context.Context, sport domain.Sport) (domain.Like, error) {
	var like domain.Like
	err := c.do(ctx, http.MethodPost, "/admin/like/reset", sportQuery(sport), "", nil, &like)
	return like, err
}
