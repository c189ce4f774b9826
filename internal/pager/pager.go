// Package pager drives cursor-based "load more" over chat history,
// independent of the live push stream.
package pager

import (
	"context"
	"sync"

	"github.com/toky-team/toky-admin/internal/domain"
)

// DefaultLimit is the page size used when the caller passes none.
const DefaultLimit = 50

// ChatAPI is the slice of the REST client the pager consumes.
type ChatAPI interface {
	ListMessages(ctx context.Context, sport domain.Sport, limit int, cursor string) (domain.Paginated[domain.Chat], error)
	DeleteMessage(ctx context.Context, id string) error
	BulkDeleteMessages(ctx context.Context, ids []string) ([]string, error)
}

// Pager owns the base list for one chat view. Switching sport replaces the
// list; LoadMore appends. Every Load/Refetch bumps a generation so a stale
// in-flight response landing after a switch is discarded instead of
// populating the wrong sport's state.
type Pager struct {
	api   ChatAPI
	limit int

	mu      sync.Mutex
	sport   domain.Sport
	items   []domain.Chat
	cursor  string
	hasNext bool
	gen     uint64
}

func New(api ChatAPI, limit int) *Pager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Pager{api: api, limit: limit, hasNext: true}
}

// Load switches to a sport and fetches its first page, replacing the base
// list wholesale.
func (p *Pager) Load(ctx context.Context, sport domain.Sport) error {
	p.mu.Lock()
	p.sport = sport
	p.cursor = ""
	p.hasNext = true
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	return p.fetch(ctx, sport, "", gen)
}

// Refetch reloads page one for the current sport. A no-op when no sport
// has been selected.
func (p *Pager) Refetch(ctx context.Context) error {
	p.mu.Lock()
	sport := p.sport
	if sport == "" {
		p.mu.Unlock()
		return nil
	}
	p.cursor = ""
	p.hasNext = true
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	return p.fetch(ctx, sport, "", gen)
}

// LoadMore appends the next page. Silently does nothing when there is no
// next page, no sport selected, or no cursor to advance from.
func (p *Pager) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if !p.hasNext || p.sport == "" || p.cursor == "" {
		p.mu.Unlock()
		return nil
	}
	sport, cursor, gen := p.sport, p.cursor, p.gen
	p.mu.Unlock()

	return p.fetch(ctx, sport, cursor, gen)
}

func (p *Pager) fetch(ctx context.Context, sport domain.Sport, cursor string, gen uint64) error {
	page, err := p.api.ListMessages(ctx, sport, p.limit, cursor)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		// A newer Load/Refetch started while this request was in flight.
		return nil
	}
	if cursor == "" {
		p.items = page.Items
	} else {
		p.items = append(p.items, page.Items...)
	}
	p.cursor = page.NextCursor
	p.hasNext = page.HasNext
	return nil
}

// Delete removes a message server-side and, only on success, drops it from
// the base list. This is the REST-only view policy: the list is the single
// source here, so removal is direct rather than via a filtered set.
func (p *Pager) Delete(ctx context.Context, id string) error {
	if err := p.api.DeleteMessage(ctx, id); err != nil {
		return err
	}
	p.removeLocal(map[string]struct{}{id: {}})
	return nil
}

// BulkDelete deletes several messages; IDs confirmed deleted are removed
// from the base list even when a later one fails.
func (p *Pager) BulkDelete(ctx context.Context, ids []string) error {
	deleted, err := p.api.BulkDeleteMessages(ctx, ids)
	if len(deleted) > 0 {
		gone := make(map[string]struct{}, len(deleted))
		for _, id := range deleted {
			gone[id] = struct{}{}
		}
		p.removeLocal(gone)
	}
	return err
}

func (p *Pager) removeLocal(gone map[string]struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.items[:0:0]
	for _, c := range p.items {
		if _, ok := gone[c.ID]; !ok {
			kept = append(kept, c)
		}
	}
	p.items = kept
}

// Items snapshots the base list.
func (p *Pager) Items() []domain.Chat {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Chat, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Pager) Sport() domain.Sport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sport
}

func (p *Pager) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasNext
}
