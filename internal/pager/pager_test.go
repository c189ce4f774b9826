package pager

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toky-team/toky-admin/internal/domain"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls int
	pages map[string]domain.Paginated[domain.Chat] // key: sport+cursor
	gate  map[domain.Sport]chan struct{}           // block per-sport until released
	fail  map[string]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		pages: make(map[string]domain.Paginated[domain.Chat]),
		gate:  make(map[domain.Sport]chan struct{}),
		fail:  make(map[string]error),
	}
}

func key(sport domain.Sport, cursor string) string { return string(sport) + "|" + cursor }

func (f *fakeAPI) page(sport domain.Sport, cursor string, page domain.Paginated[domain.Chat]) {
	f.pages[key(sport, cursor)] = page
}

func (f *fakeAPI) ListMessages(_ context.Context, sport domain.Sport, _ int, cursor string) (domain.Paginated[domain.Chat], error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate[sport]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.pages[key(sport, cursor)], nil
}

func (f *fakeAPI) DeleteMessage(_ context.Context, id string) error {
	return f.fail[id]
}

func (f *fakeAPI) BulkDeleteMessages(ctx context.Context, ids []string) ([]string, error) {
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := f.DeleteMessage(ctx, id); err != nil {
			return deleted, err
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func chat(id string) domain.Chat { return domain.Chat{ID: id, Sport: domain.Football} }

func TestLoadMoreAppendsAndAdvancesCursor(t *testing.T) {
	api := newFakeAPI()
	api.page(domain.Football, "", domain.Paginated[domain.Chat]{
		Items: []domain.Chat{chat("a"), chat("b")}, NextCursor: "b", HasNext: true,
	})
	api.page(domain.Football, "b", domain.Paginated[domain.Chat]{
		Items: []domain.Chat{chat("c")}, HasNext: false,
	})

	p := New(api, 2)
	require.NoError(t, p.Load(context.Background(), domain.Football))
	require.NoError(t, p.LoadMore(context.Background()))

	assert.Equal(t, []string{"a", "b", "c"}, itemIDs(p))
	assert.False(t, p.HasNext())
}

func TestLoadMoreIsNoOpWithoutNextPage(t *testing.T) {
	api := newFakeAPI()
	api.page(domain.Football, "", domain.Paginated[domain.Chat]{
		Items: []domain.Chat{chat("a")}, HasNext: false,
	})

	p := New(api, 0)
	require.NoError(t, p.Load(context.Background(), domain.Football))
	before := api.callCount()

	require.NoError(t, p.LoadMore(context.Background()))
	assert.Equal(t, before, api.callCount(), "no network call expected")
	assert.Equal(t, []string{"a"}, itemIDs(p))
}

func TestLoadMoreIsNoOpWithoutSport(t *testing.T) {
	api := newFakeAPI()
	p := New(api, 0)
	require.NoError(t, p.LoadMore(context.Background()))
	assert.Zero(t, api.callCount())
}

func TestSwitchingSportReplacesBaseList(t *testing.T) {
	api := newFakeAPI()
	api.page(domain.Football, "", domain.Paginated[domain.Chat]{
		Items: []domain.Chat{chat("a"), chat("b")}, NextCursor: "b", HasNext: true,
	})
	api.page(domain.Basketball, "", domain.Paginated[domain.Chat]{
		Items: []domain.Chat{{ID: "x", Sport: domain.Basketball}}, HasNext: false,
	})

	p := New(api, 0)
	require.NoError(t, p.Load(context.Background(), domain.Football))
	require.NoError(t, p.Load(context.Background(), domain.Basketball))

	assert.Equal(t, []string{"x"}, itemIDs(p), "switch must replace, not append")
	assert.Equal(t, domain.Basketball, p.Sport())
	assert.False(t, p.HasNext())
}

func TestStaleResponseAfterSwitchIsDiscarded(t *testing.T) {
	api := newFakeAPI()
	api.page(domain.Football, "", domain.Paginated[domain.Chat]{
		Items: []domain.Chat{chat("stale")}, HasNext: false,
	})
	api.page(domain.Basketball, "", domain.Paginated[domain.Chat]{
		Items: []domain.Chat{{ID: "fresh", Sport: domain.Basketball}}, HasNext: false,
	})

	gate := make(chan struct{})
	api.gate[domain.Football] = gate

	p := New(api, 0)
	done := make(chan error, 1)
	go func() { done <- p.Load(context.Background(), domain.Football) }()

	// Wait for the football fetch to be in flight, then switch.
	require.Eventually(t, func() bool { return api.callCount() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, p.Load(context.Background(), domain.Basketball))

	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"fresh"}, itemIDs(p), "stale football page landed on the basketball view")
}

func TestDeleteRemovesFromBaseListOnlyOnSuccess(t *testing.T) {
	api := newFakeAPI()
	api.page(domain.Football, "", domain.Paginated[domain.Chat]{
		Items: []domain.Chat{chat("a"), chat("b")}, HasNext: false,
	})
	api.fail["b"] = assert.AnError

	p := New(api, 0)
	require.NoError(t, p.Load(context.Background(), domain.Football))

	require.NoError(t, p.Delete(context.Background(), "a"))
	assert.Equal(t, []string{"b"}, itemIDs(p))

	require.Error(t, p.Delete(context.Background(), "b"))
	assert.Equal(t, []string{"b"}, itemIDs(p), "failed delete must not remove locally")
}

func TestBulkDeleteKeepsConfirmedRemovals(t *testing.T) {
	api := newFakeAPI()
	api.page(domain.Football, "", domain.Paginated[domain.Chat]{
		Items: []domain.Chat{chat("a"), chat("b"), chat("c")}, HasNext: false,
	})
	api.fail["b"] = assert.AnError

	p := New(api, 0)
	require.NoError(t, p.Load(context.Background(), domain.Football))

	require.Error(t, p.BulkDelete(context.Background(), []string{"a", "b", "c"}))
	assert.Equal(t, []string{"b", "c"}, itemIDs(p), "only a was confirmed deleted")
}

func itemIDs(p *Pager) []string {
	items := p.Items()
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}
