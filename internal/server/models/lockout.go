package models

import "time"

// LockoutState is the persisted admin-lockout record. It lives under its own
// slot, independent of session state.
//
// Invariants:
//   - Attempts is never negative and never exceeds the configured threshold.
//   - BlockUntil is set only when Attempts reaches the threshold.
//   - Attempts resets to zero whenever a block expires or a login succeeds.
type LockoutState struct {
	Attempts   int        `json:"attempts"`
	BlockUntil *time.Time `json:"block_until"`
}

// Blocked reports whether the state is inside an active block window at the
// given instant. Pure function of (state, now) so it is testable without a
// real clock.
func (s LockoutState) Blocked(now time.Time) bool {
	return s.BlockUntil != nil && now.Before(*s.BlockUntil)
}
