// Package session holds the current user identity and keeps it in sync with
// its slot in the KV store.
package session

import (
	"context"
	"sync"

	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/models"
)

// Manager is the session state slice. A nil identity means unauthenticated
// and gates everything else.
type Manager struct {
	store  kvstore.Store
	logger logging.Logger

	mu       sync.RWMutex
	identity *models.Identity
}

// NewManager rehydrates the session slice from the store. A missing or
// corrupt slot starts the session logged out.
func NewManager(ctx context.Context, store kvstore.Store, logger logging.Logger) *Manager {
	m := &Manager{
		store:  store,
		logger: logger.With("module", "session"),
	}
	m.identity = kvstore.Read[*models.Identity](ctx, store, kvstore.KeySessionIdentity, nil)
	return m
}

// Identity returns the current identity, or nil when logged out.
func (m *Manager) Identity() *models.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return nil
	}
	id := *m.identity
	return &id
}

// SetIdentity replaces the session identity and synchronizes the persisted
// slot. Passing nil logs out: the slot is deleted rather than set to null,
// so "no session" is never confused with a parse failure.
func (m *Manager) SetIdentity(ctx context.Context, identity *models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if identity == nil {
		if err := kvstore.Remove(ctx, m.store, kvstore.KeySessionIdentity); err != nil {
			return err
		}
		m.identity = nil
		m.logger.Info(ctx, "session cleared")
		return nil
	}

	if err := kvstore.Write(ctx, m.store, kvstore.KeySessionIdentity, identity); err != nil {
		return err
	}
	id := *identity
	m.identity = &id
	m.logger.Info(ctx, "session set", "user_id", identity.ID)
	return nil
}
