package httpx

import (
	"context"

	"github.com/toky-team/toky-admin/internal/domain"
)

// Me returns the session identity, or an error when no valid session
// cookie is held.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var user domain.User
	err := c.getJSON(ctx, "/user", nil, &user)
	return user, err
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := c.getJSON(ctx, "/admin/user", nil, &users)
	return users, err
}

func (c *Client) UserSummary(ctx context.Context) (domain.UserSummary, error) {
	var summary domain.UserSummary
	err := c.getJSON(ctx, "/admin/user/summary", nil, &summary)
	return summary, err
}

func (c *Client) IncrementTicket(ctx context.Context, userID string, count int) (domain.User, error) {
	body := struct {
		UserID string `json:"userId"`
		Count  int    `json:"count"`
	}{userID, count}
	var user domain.User
	err := c.postJSON(ctx, "/admin/ticket/increment", nil, body, &user)
	return user, err
}

func (c *Client) Health(ctx context.Context) (domain.Health, error) {
	var h domain.Health
	err := c.getJSON(ctx, "/health", nil, &h)
	return h, err
}
