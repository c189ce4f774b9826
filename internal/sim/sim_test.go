package sim_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toky-team/toky-admin/internal/apierr"
	"github.com/toky-team/toky-admin/internal/config"
	"github.com/toky-team/toky-admin/internal/domain"
	"github.com/toky-team/toky-admin/internal/httpx"
	"github.com/toky-team/toky-admin/internal/raffle"
	"github.com/toky-team/toky-admin/internal/sim"
)

func newClient(t *testing.T) *httpx.Client {
	t.Helper()
	srv := httptest.NewServer(sim.New(zap.NewNop()).Handler())
	t.Cleanup(srv.Close)

	c, err := httpx.New(config.Config{APIURL: srv.URL, RequestTimeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestSessionGatesAdminRoutes(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.Me(ctx)
	var apiErr *apierr.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "/user", apiErr.Path)

	require.NoError(t, c.Login(ctx, "user03"))
	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user03", me.Username)
	assert.True(t, me.IsAdmin)
}

func TestScoreLifecycle(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "user00"))

	score, err := c.GetScore(ctx, domain.IceHockey)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchBefore, score.MatchStatus)

	score, err = c.StartMatch(ctx, domain.IceHockey)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchPlaying, score.MatchStatus)

	score, err = c.UpdateScore(ctx, domain.IceHockey, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, score.KUScore)
	assert.Equal(t, 2, score.YUScore)

	score, err = c.EndMatch(ctx, domain.IceHockey)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchFinish, score.MatchStatus)

	score, err = c.ResetMatch(ctx, domain.IceHockey)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchBefore, score.MatchStatus)
	assert.Zero(t, score.KUScore)
	assert.Zero(t, score.YUScore)
}

func TestRaffleRoundsNeverRepeatWinners(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "user00"))

	gift, err := c.CreateGift(ctx, httpx.GiftParams{
		Name:           "경품",
		Alias:          "prize",
		RequiredTicket: 2,
		Image:          &httpx.Upload{Filename: "prize.png", Reader: strings.NewReader("png-bytes")},
	})
	require.NoError(t, err)
	require.NotEmpty(t, gift.ID)

	tracker := raffle.NewTracker(c, gift.ID)
	var winners []string
	for round := 0; round < 3; round++ {
		results, err := tracker.Draw(ctx, 5, false)
		require.NoError(t, err)
		require.Len(t, results, 5)
		for _, r := range results {
			winners = append(winners, r.UserID)
		}
	}

	seen := make(map[string]struct{}, len(winners))
	for _, id := range winners {
		_, dup := seen[id]
		assert.False(t, dup, "user %s won twice across rounds", id)
		seen[id] = struct{}{}
	}
	assert.Equal(t, 15, tracker.TotalWinners())
}

func TestCounterResets(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "user00"))

	cheer, err := c.ResetCheer(ctx, domain.Football)
	require.NoError(t, err)
	assert.Zero(t, cheer.KULike)
	assert.Zero(t, cheer.YULike)

	like, err := c.ResetLike(ctx, domain.Football)
	require.NoError(t, err)
	assert.Zero(t, like.KULike)
	assert.Zero(t, like.YULike)
}

func TestUserSummaryAndTickets(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "user00"))

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 20)

	summary, err := c.UserSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, summary.TotalUsers)
	assert.Equal(t, 10, summary.KUUsers)
	assert.Equal(t, 10, summary.YUUsers)

	before := users[0].Ticket
	updated, err := c.IncrementTicket(ctx, users[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, before+3, updated.Ticket)
}
