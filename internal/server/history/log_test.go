package history

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzarzor/imagestudio/internal/common"
	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/models"
)

func testLogger() logging.Logger {
	return logging.Discard()
}

func TestAddPrependsNewest(t *testing.T) {
	ctx := context.Background()
	l := NewLog(ctx, kvstore.NewInMemoryStore(), testLogger(), 30)

	_, err := l.Add(ctx, "https://example.com/1.png", "first", "flux", models.HistoryGeneration)
	require.NoError(t, err)
	_, err = l.Add(ctx, "https://example.com/2.png", "second", "flux", models.HistoryGeneration)
	require.NoError(t, err)

	items := l.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Prompt)
	assert.Equal(t, "first", items[1].Prompt)
}

func TestCapEvictsOldest(t *testing.T) {
	ctx := context.Background()
	l := NewLog(ctx, kvstore.NewInMemoryStore(), testLogger(), 30)

	for i := 0; i < 31; i++ {
		_, err := l.Add(ctx, "u", fmt.Sprintf("prompt-%d", i), "flux", models.HistoryGeneration)
		require.NoError(t, err)
	}

	items := l.Items()
	require.Len(t, items, 30)
	assert.Equal(t, "prompt-30", items[0].Prompt)
	// prompt-0 fell off the end
	assert.Equal(t, "prompt-1", items[29].Prompt)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	l := NewLog(ctx, kvstore.NewInMemoryStore(), testLogger(), 30)

	item, err := l.Add(ctx, "u", "keep me not", "flux", models.HistoryGeneration)
	require.NoError(t, err)

	require.NoError(t, l.Delete(ctx, item.ID))
	assert.Empty(t, l.Items())

	assert.ErrorIs(t, l.Delete(ctx, item.ID), common.ErrorNotFound)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewInMemoryStore()
	l := NewLog(ctx, store, testLogger(), 30)

	_, err := l.Add(ctx, "u", "gone soon", "flux", models.HistoryGeneration)
	require.NoError(t, err)

	require.NoError(t, l.Clear(ctx))
	assert.Empty(t, l.Items())

	raw, err := store.Get(ctx, kvstore.KeyHistory)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestRehydratesFromStore(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewInMemoryStore()

	l := NewLog(ctx, store, testLogger(), 30)
	_, err := l.Add(ctx, "u", "persisted", "flux", models.HistoryGeneration)
	require.NoError(t, err)

	l2 := NewLog(ctx, store, testLogger(), 30)
	items := l2.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "persisted", items[0].Prompt)
}

func TestCorruptSlotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewInMemoryStore()
	require.NoError(t, store.Set(ctx, kvstore.KeyHistory, []byte("][")))

	l := NewLog(ctx, store, testLogger(), 30)
	assert.Empty(t, l.Items())
}

func TestItemsReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	l := NewLog(ctx, kvstore.NewInMemoryStore(), testLogger(), 30)

	_, err := l.Add(ctx, "u", "original", "flux", models.HistoryGeneration)
	require.NoError(t, err)

	items := l.Items()
	items[0].Prompt = "mutated"
	assert.Equal(t, "original", l.Items()[0].Prompt)
}
