package httpx

import (
	"context"
	"net/url"

	"github.com/toky-team/toky-admin/internal/domain"
)

func (c *Client) ListLiveURLs(ctx context.Context, sport domain.Sport) ([]domain.LiveURL, error) {
	var urls []domain.LiveURL
	err := c.getJSON(ctx, "/live-url", sportQuery(sport), &urls)
	return urls, err
}

func (c *Client) CreateLiveURL(ctx context.Context, sport domain.Sport, broadcastName, rawURL string) (domain.LiveURL, error) {
	body := struct {
		Sport         domain.Sport `json:"sport"`
		BroadcastName string       `json:"broadcastName"`
		URL           string       `json:"url"`
	}{sport, broadcastName, rawURL}
	var lu domain.LiveURL
	err := c.postJSON(ctx, "/admin/live-url", nil, body, &lu)
	return lu, err
}

// UpdateLiveURL patches name and/or url; nil pointers are omitted.
func (c *Client) UpdateLiveURL(ctx context.Context, id string, broadcastName, rawURL *string) (domain.LiveURL, error) {
	body := struct {
		BroadcastName *string `json:"broadcastName,omitempty"`
		URL           *string `json:"url,omitempty"`
	}{broadcastName, rawURL}
	var lu domain.LiveURL
	err := c.patchJSON(ctx, "/admin/live-url/"+url.PathEscape(id), nil, body, &lu)
	return lu, err
}

func (c *Client) DeleteLiveURL(ctx context.Context, id string) error {
	return c.delete(ctx, "/admin/live-url/"+url.PathEscape(id))
}
