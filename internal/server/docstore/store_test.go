package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"testing"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	ID     string `json:"id"`
	PlanID string `json:"planId"`
	Title  string `json:"title"`
	Order  int    `json:"order"`
}

// backends returns a fresh instance of every store implementation that can
// run without external services.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func titles(docs []*doc) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Title)
	}
	sort.Strings(out)
	return out
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "steps", "s1")
			require.ErrorIs(t, err, common.ErrorNotFound)

			require.NoError(t, s.Set(ctx, "steps", "s1", doc{ID: "s1", PlanID: "p1", Title: "Check trend", Order: 1}))
			got, err := GetAs[doc](ctx, s, "steps", "s1")
			require.NoError(t, err)
			assert.Equal(t, &doc{ID: "s1", PlanID: "p1", Title: "Check trend", Order: 1}, got)

			// Set replaces the whole document
			require.NoError(t, s.Set(ctx, "steps", "s1", doc{ID: "s1", Title: "Check volume"}))
			got, err = GetAs[doc](ctx, s, "steps", "s1")
			require.NoError(t, err)
			assert.Equal(t, &doc{ID: "s1", Title: "Check volume"}, got)

			existed, err := s.Delete(ctx, "steps", "s1")
			require.NoError(t, err)
			assert.True(t, existed)

			existed, err = s.Delete(ctx, "steps", "s1")
			require.NoError(t, err)
			assert.False(t, existed)
		})
	}
}

func TestStore_FindAndList(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "steps", "a", doc{ID: "a", PlanID: "p1", Title: "A"}))
			require.NoError(t, s.Set(ctx, "steps", "b", doc{ID: "b", PlanID: "p1", Title: "B"}))
			require.NoError(t, s.Set(ctx, "steps", "c", doc{ID: "c", PlanID: "p2", Title: "C"}))
			require.NoError(t, s.Set(ctx, "plans", "a", doc{ID: "a", PlanID: "p1", Title: "other collection"}))

			found, err := FindAs[doc](ctx, s, "steps", "planId", "p1")
			require.NoError(t, err)
			assert.Equal(t, []string{"A", "B"}, titles(found))

			found, err = FindAs[doc](ctx, s, "steps", "planId", "missing")
			require.NoError(t, err)
			assert.Empty(t, found)

			all, err := ListAs[doc](ctx, s, "steps")
			require.NoError(t, err)
			assert.Equal(t, []string{"A", "B", "C"}, titles(all))

			_, err = s.Find(ctx, "steps", "planId' OR 1=1 --", "x")
			require.Error(t, err)
		})
	}
}

func TestBatch_CommitsAllOperations(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "steps", "a", doc{ID: "a", PlanID: "p1", Title: "A", Order: 5}))
			require.NoError(t, s.Set(ctx, "plans", "p1", doc{ID: "p1", Title: "Scalping"}))

			b := s.NewBatch()
			b.Update("steps", "a", map[string]any{"order": 1})
			b.Set("steps", "b", doc{ID: "b", PlanID: "p1", Title: "B", Order: 2})
			b.Delete("plans", "p1")
			b.Delete("plans", "never-existed")
			assert.Equal(t, 4, b.Len())
			require.NoError(t, b.Commit(ctx))

			a, err := GetAs[doc](ctx, s, "steps", "a")
			require.NoError(t, err)
			assert.Equal(t, &doc{ID: "a", PlanID: "p1", Title: "A", Order: 1}, a, "update must merge, not replace")

			_, err = s.Get(ctx, "steps", "b")
			require.NoError(t, err)

			_, err = s.Get(ctx, "plans", "p1")
			require.ErrorIs(t, err, common.ErrorNotFound)
		})
	}
}

func TestBatch_FailedUpdateAppliesNothing(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "steps", "a", doc{ID: "a", Title: "A", Order: 5}))

			b := s.NewBatch()
			b.Update("steps", "a", map[string]any{"order": 1})
			b.Delete("steps", "a")
			b.Update("steps", "a", map[string]any{"order": 2})
			err := b.Commit(ctx)
			require.ErrorIs(t, err, common.ErrorNotFound)

			a, err := GetAs[doc](ctx, s, "steps", "a")
			require.NoError(t, err)
			assert.Equal(t, 5, a.Order)
		})
	}
}

func TestBatch_TooLarge(t *testing.T) {
	s := NewMemoryStore()
	b := s.NewBatch()
	for i := 0; i <= MaxBatchWrites; i++ {
		b.Set("steps", fmt.Sprint(i), doc{ID: fmt.Sprint(i)})
	}
	err := b.Commit(context.Background())
	require.ErrorIs(t, err, common.ErrBatchTooLarge)

	all, err := s.List(context.Background(), "steps")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBatch_EncodeErrorReportedOnCommit(t *testing.T) {
	b := NewMemoryStore().NewBatch()
	b.Set("steps", "a", map[string]any{"bad": make(chan int)})
	require.Error(t, b.Commit(context.Background()))
}

func TestBatch_EmptyCommitIsNoop(t *testing.T) {
	require.NoError(t, NewMemoryStore().NewBatch().Commit(context.Background()))
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "steps", "a", doc{ID: "a"}))

	raw, err := s.Get(ctx, "steps", "a")
	require.NoError(t, err)
	raw[0] = 'x'

	again, err := s.Get(ctx, "steps", "a")
	require.NoError(t, err)
	assert.True(t, json.Valid(again))
}

func TestMergeJSON(t *testing.T) {
	out, err := mergeJSON([]byte(`{"a":1,"b":"x"}`), []byte(`{"b":"y","c":true}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":"y","c":true}`, string(out))

	_, err = mergeJSON([]byte(`[`), []byte(`{}`))
	require.Error(t, err)
}
