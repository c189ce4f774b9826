package httpx

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/toky-team/toky-admin/internal/domain"
)

// ListMessages fetches one page of chat history for a sport, newest first.
// cursor is the opaque token from the previous page; empty fetches page one.
func (c *Client) ListMessages(ctx context.Context, sport domain.Sport, limit int, cursor string) (domain.Paginated[domain.Chat], error) {
	q := url.Values{}
	q.Set("sport", string(sport))
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	var page domain.Paginated[domain.Chat]
	if err := c.getJSON(ctx, "/chat/messages", q, &page); err != nil {
		return domain.Paginated[domain.Chat]{}, err
	}
	return page, nil
}

// DeleteMessage removes one chat message server-side.
func (c *Client) DeleteMessage(ctx context.Context, id string) error {
	return c.delete(ctx, "/admin/chat/"+url.PathEscape(id))
}

// BulkDeleteMessages deletes several messages. The first failure aborts the
// remainder so callers only apply optimistic state for IDs that actually
// deleted.
func (c *Client) BulkDeleteMessages(ctx context.Context, ids []string) ([]string, error) {
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := c.DeleteMessage(ctx, id); err != nil {
			return deleted, fmt.Errorf("delete message %s: %w", id, err)
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}
