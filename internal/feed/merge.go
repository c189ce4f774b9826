package feed

import (
	"sort"

	"github.com/toky-team/toky-admin/internal/domain"
)

// Merge reconciles live-pushed messages with a paginated base list for one
// sport. It is pure: inputs are never mutated and the same inputs always
// produce the same output.
//
// Rules:
//   - push items for other sports are ignored
//   - when no push item survives, base is returned as-is (same slice), so
//     callers can cheaply detect "nothing changed"
//   - an ID present in both lists keeps the base copy; the base list
//     reflects server-confirmed state and wins ties
//   - ordering is newest-first by CreatedAt; equal timestamps fall back to
//     descending ID so the result is deterministic under any input order
func Merge(base, push []domain.Chat, sport domain.Sport) []domain.Chat {
	var fresh []domain.Chat
	if len(push) > 0 {
		seen := make(map[string]struct{}, len(base))
		for _, c := range base {
			seen[c.ID] = struct{}{}
		}
		for _, c := range push {
			if c.Sport != sport {
				continue
			}
			if _, dup := seen[c.ID]; dup {
				continue
			}
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		return base
	}

	merged := make([]domain.Chat, 0, len(fresh)+len(base))
	merged = append(merged, fresh...)
	merged = append(merged, base...)
	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID > merged[j].ID
	})
	return merged
}
