// Package history maintains the capped, newest-first generation history and
// keeps it in sync with its slot in the KV store.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mzarzor/imagestudio/internal/common"
	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/models"
)

// DefaultCap is the maximum number of retained history items.
const DefaultCap = 30

// Log is the generation-history state slice.
type Log struct {
	store  kvstore.Store
	logger logging.Logger
	cap    int

	mu    sync.Mutex
	items []models.HistoryItem
}

// NewLog rehydrates the history from its slot. A non-positive cap selects
// DefaultCap. Items beyond the cap in a persisted record (written by an older
// build with a larger cap) are dropped on first write-back, not on load.
func NewLog(ctx context.Context, store kvstore.Store, logger logging.Logger, capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	l := &Log{
		store:  store,
		logger: logger.With("module", "history"),
		cap:    capacity,
	}
	l.items = kvstore.Read(ctx, store, kvstore.KeyHistory, []models.HistoryItem{})
	return l
}

// Add prepends a new item, evicting the oldest entries beyond the cap, and
// rewrites the slot.
func (l *Log) Add(ctx context.Context, imageURL, prompt, model, typ string) (models.HistoryItem, error) {
	item := models.HistoryItem{
		ID:        uuid.NewString(),
		ImageURL:  imageURL,
		Prompt:    prompt,
		Timestamp: time.Now(),
		Model:     model,
		Type:      typ,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = append([]models.HistoryItem{item}, l.items...)
	if len(l.items) > l.cap {
		l.items = l.items[:l.cap]
	}

	if err := kvstore.Write(ctx, l.store, kvstore.KeyHistory, l.items); err != nil {
		return models.HistoryItem{}, err
	}
	return item, nil
}

// Items returns a snapshot, newest first.
func (l *Log) Items() []models.HistoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.HistoryItem, len(l.items))
	copy(out, l.items)
	return out
}

// Clear drops every item and removes the slot.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = nil
	return kvstore.Remove(ctx, l.store, kvstore.KeyHistory)
}

// Delete removes the item with the given id and rewrites the slot.
// Returns common.ErrorNotFound when no such item exists.
func (l *Log) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, item := range l.items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return common.ErrorNotFound
	}

	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return kvstore.Write(ctx, l.store, kvstore.KeyHistory, l.items)
}
