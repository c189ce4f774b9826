package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toky-team/toky-admin/internal/domain"
)

func chatAt(id string, sport domain.Sport, ts string) domain.Chat {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return domain.Chat{ID: id, Sport: sport, CreatedAt: t}
}

func TestMergeReturnsBaseUnchangedWithoutPushItems(t *testing.T) {
	base := []domain.Chat{chatAt("a", domain.Football, "2024-01-01T10:00:00Z")}

	merged := Merge(base, nil, domain.Football)
	assert.True(t, &base[0] == &merged[0], "expected the same underlying slice back")

	// Push items for a different sport must not break the short-circuit.
	push := []domain.Chat{chatAt("x", domain.Basketball, "2024-01-01T12:00:00Z")}
	merged = Merge(base, push, domain.Football)
	assert.True(t, &base[0] == &merged[0])
}

func TestMergeNewPushItemComesFirst(t *testing.T) {
	base := []domain.Chat{chatAt("a", domain.Football, "2024-01-01T10:00:00Z")}
	push := []domain.Chat{chatAt("b", domain.Football, "2024-01-01T11:00:00Z")}

	merged := Merge(base, push, domain.Football)
	require.Len(t, merged, 2)
	assert.Equal(t, "b", merged[0].ID)
	assert.Equal(t, "a", merged[1].ID)
}

func TestMergeStaleDuplicateKeepsBaseCopy(t *testing.T) {
	base := []domain.Chat{chatAt("a", domain.Football, "2024-01-01T10:00:00Z")}
	base[0].Content = "server copy"
	push := []domain.Chat{chatAt("a", domain.Football, "2024-01-01T10:00:00Z")}
	push[0].Content = "push copy"

	merged := Merge(base, push, domain.Football)
	require.Len(t, merged, 1)
	assert.Equal(t, "server copy", merged[0].Content)
}

func TestMergeNoDuplicateIDs(t *testing.T) {
	base := []domain.Chat{
		chatAt("a", domain.Football, "2024-01-01T10:00:00Z"),
		chatAt("b", domain.Football, "2024-01-01T09:00:00Z"),
	}
	push := []domain.Chat{
		chatAt("c", domain.Football, "2024-01-01T11:00:00Z"),
		chatAt("a", domain.Football, "2024-01-01T10:00:00Z"), // stale dup
		chatAt("d", domain.Basketball, "2024-01-01T12:00:00Z"),
	}

	merged := Merge(base, push, domain.Football)
	require.Len(t, merged, 3)
	seen := map[string]int{}
	for _, c := range merged {
		seen[c.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "id %s appeared %d times", id, n)
	}
	assert.NotContains(t, seen, "d", "other sport's push item leaked in")
}

func TestMergeOrderedNewestFirst(t *testing.T) {
	base := []domain.Chat{
		chatAt("a", domain.Football, "2024-01-01T08:00:00Z"),
		chatAt("b", domain.Football, "2024-01-01T06:00:00Z"),
	}
	push := []domain.Chat{
		chatAt("c", domain.Football, "2024-01-01T07:00:00Z"),
		chatAt("d", domain.Football, "2024-01-01T09:00:00Z"),
	}

	merged := Merge(base, push, domain.Football)
	require.Len(t, merged, 4)
	for i := 0; i < len(merged)-1; i++ {
		assert.False(t, merged[i].CreatedAt.Before(merged[i+1].CreatedAt),
			"out of order at %d: %s before %s", i, merged[i].ID, merged[i+1].ID)
	}
	assert.Equal(t, []string{"d", "a", "c", "b"}, ids(merged))
}

func TestMergeEqualTimestampsTieBreakByID(t *testing.T) {
	// Equal CreatedAt falls back to descending ID, so the result is the
	// same no matter which side each item arrived on.
	base := []domain.Chat{chatAt("m1", domain.Football, "2024-01-01T10:00:00Z")}
	push := []domain.Chat{chatAt("m2", domain.Football, "2024-01-01T10:00:00Z")}

	assert.Equal(t, []string{"m2", "m1"}, ids(Merge(base, push, domain.Football)))

	base2 := []domain.Chat{chatAt("m2", domain.Football, "2024-01-01T10:00:00Z")}
	push2 := []domain.Chat{chatAt("m1", domain.Football, "2024-01-01T10:00:00Z")}
	assert.Equal(t, []string{"m2", "m1"}, ids(Merge(base2, push2, domain.Football)))
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := []domain.Chat{
		chatAt("a", domain.Football, "2024-01-01T08:00:00Z"),
		chatAt("b", domain.Football, "2024-01-01T06:00:00Z"),
	}
	push := []domain.Chat{chatAt("c", domain.Football, "2024-01-01T07:00:00Z")}
	baseIDs, pushIDs := ids(base), ids(push)

	first := Merge(base, push, domain.Football)
	second := Merge(base, push, domain.Football)

	assert.Equal(t, baseIDs, ids(base))
	assert.Equal(t, pushIDs, ids(push))
	assert.Equal(t, ids(first), ids(second), "same inputs must give the same output")
}

func ids(chats []domain.Chat) []string {
	out := make([]string, len(chats))
	for i, c := range chats {
		out[i] = c.ID
	}
	return out
}
