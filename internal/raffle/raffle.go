// Package raffle tracks gift raffle draws across rounds, ensuring winners
// from earlier rounds are excluded from later ones.
package raffle

import (
	"context"
	"errors"
	"sync"

	"github.com/toky-team/toky-admin/internal/domain"
)

var ErrNoGift = errors.New("raffle: gift id required")

// DrawAPI is the slice of the REST client the tracker needs.
type DrawAPI interface {
	RaffleDraw(ctx context.Context, giftID string, count int, excludeDrawIDs []string, includeAdmin bool) ([]domain.RaffleResult, error)
}

// Tracker accumulates results for one gift. Every Draw passes the draw IDs
// of all previous winners as exclusions, so the union of rounds never
// contains a duplicate winner.
type Tracker struct {
	api    DrawAPI
	giftID string

	mu         sync.Mutex
	results    []domain.RaffleResult
	excludeIDs []string
}

func NewTracker(api DrawAPI, giftID string) *Tracker {
	return &Tracker{api: api, giftID: giftID}
}

// Draw runs one raffle round and folds the winners into the accumulated
// state. Returns only the fresh round's winners.
func (t *Tracker) Draw(ctx context.Context, count int, includeAdmin bool) ([]domain.RaffleResult, error) {
	if t.giftID == "" {
		return nil, ErrNoGift
	}

	t.mu.Lock()
	exclude := make([]string, len(t.excludeIDs))
	copy(exclude, t.excludeIDs)
	t.mu.Unlock()

	fresh, err := t.api.RaffleDraw(ctx, t.giftID, count, exclude, includeAdmin)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.results = append(t.results, fresh...)
	for _, r := range fresh {
		t.excludeIDs = append(t.excludeIDs, r.DrawID)
	}
	t.mu.Unlock()
	return fresh, nil
}

// Reset clears all rounds so a fresh raffle can start.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.results = nil
	t.excludeIDs = nil
	t.mu.Unlock()
}

// Results snapshots every winner drawn so far, in draw order.
func (t *Tracker) Results() []domain.RaffleResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.RaffleResult, len(t.results))
	copy(out, t.results)
	return out
}

// ExcludedDrawIDs snapshots the accumulated exclusion list.
func (t *Tracker) ExcludedDrawIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.excludeIDs))
	copy(out, t.excludeIDs)
	return out
}

// TotalWinners counts winners across all rounds.
func (t *Tracker) TotalWinners() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.results)
}
