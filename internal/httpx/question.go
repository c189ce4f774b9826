package httpx

import (
	"context"

	"github.com/toky-team/toky-admin/internal/domain"
)

func (c *Client) GetQuestion(ctx context.Context, sport domain.Sport) (domain.BetQuestion, error) {
	var q domain.BetQuestion
	err := c.getJSON(ctx, "/bet-question", sportQuery(sport), &q)
	return q, err
}

func (c *Client) GetAllQuestions(ctx context.Context) ([]domain.BetQuestion, error) {
	var qs []domain.BetQuestion
	err := c.getJSON(ctx, "/bet-question/all", nil, &qs)
	return qs, err
}

func (c *Client) UpdateQuestion(ctx context.Context, sport domain.Sport, question string, positionFilter *string) (domain.BetQuestion, error) {
	body := struct {
		Sport          domain.Sport `json:"sport"`
		Question       string       `json:"question"`
		PositionFilter *string      `json:"positionFilter"`
	}{sport, question, positionFilter}
	var q domain.BetQuestion
	err := c.patchJSON(ctx, "/admin/bet-question", nil, body, &q)
	return q, err
}

// SetAnswer records the question's answer; nil clears it.
func (c *Client) SetAnswer(ctx context.Context, sport domain.Sport, answer *domain.QuestionAnswer) (domain.BetQuestion, error) {
	body := struct {
		Sport  domain.Sport           `json:"sport"`
		Answer *domain.QuestionAnswer `json:"answer"`
	}{sport, answer}
	var q domain.BetQuestion
	err := c.patchJSON(ctx, "/admin/bet-question/answer", nil, body, &q)
	return q, err
}
