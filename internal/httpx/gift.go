package httpx

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/toky-team/toky-admin/internal/domain"
)

func (c *Client) ListGifts(ctx context.Context) ([]domain.Gift, error) {
	var gifts []domain.Gift
	err := c.getJSON(ctx, "/gift", nil, &gifts)
	return gifts, err
}

type GiftParams struct {
	Name           string
	Alias          string
	RequiredTicket int
	Image          *Upload
}

func (c *Client) CreateGift(ctx context.Context, p GiftParams) (domain.Gift, error) {
	fields := []formField{
		{"name", p.Name},
		{"alias", p.Alias},
		{"requiredTicket", strconv.Itoa(p.RequiredTicket)},
	}
	var gift domain.Gift
	err := c.postForm(ctx, "/admin/gift", fields, p.Image, &gift)
	return gift, err
}

// UpdateGift patches a gift. Blank strings and a nil image mean "leave as
// is" and are omitted from the form, matching the server's partial-update
// contract.
func (c *Client) UpdateGift(ctx context.Context, giftID string, p GiftParams) (domain.Gift, error) {
	var fields []formField
	if strings.TrimSpace(p.Name) != "" {
		fields = append(fields, formField{"name", p.Name})
	}
	if strings.TrimSpace(p.Alias) != "" {
		fields = append(fields, formField{"alias", p.Alias})
	}
	if p.RequiredTicket > 0 {
		fields = append(fields, formField{"requiredTicket", strconv.Itoa(p.RequiredTicket)})
	}
	var gift domain.Gift
	err := c.patchForm(ctx, "/admin/gift/"+url.PathEscape(giftID), fields, p.Image, &gift)
	return gift, err
}

func (c *Client) DeleteGift(ctx context.Context, giftID string) error {
	return c.delete(ctx, "/admin/gift/"+url.PathEscape(giftID))
}

// RaffleDraw draws count winners for a gift, excluding draw IDs already
// handed out. The server returns only the fresh winners.
func (c *Client) RaffleDraw(ctx context.Context, giftID string, count int, excludeDrawIDs []string, includeAdmin bool) ([]domain.RaffleResult, error) {
	body := struct {
		RaffleCount    int      `json:"raffleCount"`
		ExcludeDrawIDs []string `json:"excludeDrawIds"`
		IncludeAdmin   bool     `json:"includeAdmin"`
	}{count, excludeDrawIDs, includeAdmin}
	if body.ExcludeDrawIDs == nil {
		body.ExcludeDrawIDs = []string{}
	}
	var results []domain.RaffleResult
	err := c.postJSON(ctx, "/admin/gift/"+url.PathEscape(giftID)+"/raffle", nil, body, &results)
	return results, err
}
