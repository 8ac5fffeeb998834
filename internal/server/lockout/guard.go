// Package lockout enforces the N-strikes / timed-block policy on admin
// authentication. The guard owns the persisted lockout slot; it is mutated
// only by the admin login flow and is independent of session state.
package lockout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/models"
)

// BlockedError is returned while a block window is active. It carries the
// instant at which attempts become possible again so callers can render a
// countdown.
type BlockedError struct {
	RetryAt time.Time
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("login blocked, retry at %s", e.RetryAt.Format(time.RFC3339))
}

// Guard is the two-state (open / blocked) lockout machine.
//
// The authoritative blocked check happens synchronously inside each call
// under the mutex; any timer-driven countdown display is cosmetic and never
// decides acceptance.
type Guard struct {
	store     kvstore.Store
	logger    logging.Logger
	threshold int
	window    time.Duration

	// now is a seam so the time-based transitions are testable without a
	// real clock.
	now func() time.Time

	mu    sync.Mutex
	state models.LockoutState
}

// NewGuard rehydrates the guard from its slot. A missing or corrupt slot
// starts open with zero attempts.
func NewGuard(ctx context.Context, store kvstore.Store, logger logging.Logger, threshold int, window time.Duration) *Guard {
	g := &Guard{
		store:     store,
		logger:    logger.With("module", "lockout"),
		threshold: threshold,
		window:    window,
		now:       time.Now,
	}
	g.state = kvstore.Read(ctx, store, kvstore.KeyAdminLockout, models.LockoutState{})
	return g
}

// State returns a snapshot of the current lockout state.
func (g *Guard) State() models.LockoutState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Check must be called before evaluating any credential attempt. An expired
// block is detected lazily here and resets the machine to open. While a
// block is active it returns a *BlockedError and the caller must not consume
// an attempt.
func (g *Guard) Check(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.state.BlockUntil != nil && !g.state.Blocked(now) {
		// block expired: back to open
		g.resetLocked(ctx)
		return nil
	}
	if g.state.Blocked(now) {
		return &BlockedError{RetryAt: *g.state.BlockUntil}
	}
	return nil
}

// RecordFailure advances the attempt counter and, on reaching the threshold,
// opens a block window of the configured length. The new state is persisted
// before returning.
func (g *Guard) RecordFailure(ctx context.Context) models.LockoutState {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state.Attempts++
	if g.state.Attempts >= g.threshold && g.state.BlockUntil == nil {
		until := g.now().Add(g.window)
		g.state.BlockUntil = &until
		g.logger.Warn(ctx, "admin login blocked", "attempts", g.state.Attempts, "until", until)
	}
	g.persistLocked(ctx)
	return g.state
}

// Reset returns the machine to open with zero attempts. Called on any
// successful authentication.
func (g *Guard) Reset(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked(ctx)
}

// Remaining reports how long the active block still has to run, or zero when
// open. Intended for countdown display only.
func (g *Guard) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.BlockUntil == nil {
		return 0
	}
	d := g.state.BlockUntil.Sub(g.now())
	if d < 0 {
		return 0
	}
	return d
}

func (g *Guard) resetLocked(ctx context.Context) {
	g.state = models.LockoutState{}
	g.persistLocked(ctx)
}

// persistLocked writes the state back to its slot. A failed write-back is
// logged and survives in memory; it never blocks the login flow.
func (g *Guard) persistLocked(ctx context.Context) {
	if err := kvstore.Write(ctx, g.store, kvstore.KeyAdminLockout, g.state); err != nil {
		g.logger.Error(ctx, "failed to persist lockout state", "error", err)
	}
}
