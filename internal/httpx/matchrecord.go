package httpx

import (
	"context"
	"net/url"

	"github.com/toky-team/toky-admin/internal/domain"
)

func (c *Client) ListMatchRecords(ctx context.Context, sport domain.Sport) ([]domain.MatchRecord, error) {
	var records []domain.MatchRecord
	err := c.getJSON(ctx, "/match-record", sportQuery(sport), &records)
	return records, err
}

type MatchRecordParams struct {
	Sport  domain.Sport
	League string
	Result string
	Image  *Upload
}

func matchRecordFields(p MatchRecordParams) []formField {
	return []formField{
		{"sport", string(p.Sport)},
		{"league", p.League},
		{"result", p.Result},
	}
}

func (c *Client) CreateMatchRecord(ctx context.Context, p MatchRecordParams) (domain.MatchRecord, error) {
	var record domain.MatchRecord
	err := c.postForm(ctx, "/admin/match-record", matchRecordFields(p), p.Image, &record)
	return record, err
}

func (c *Client) UpdateMatchRecord(ctx context.Context, id string, p MatchRecordParams) (domain.MatchRecord, error) {
	var record domain.MatchRecord
	err := c.patchForm(ctx, "/admin/match-record/"+url.PathEscape(id), matchRecordFields(p), p.Image, &record)
	return record, err
}

func (c *Client) DeleteMatchRecord(ctx context.Context, id string) error {
	return c.delete(ctx, "/admin/match-record/"+url.PathEscape(id))
}
