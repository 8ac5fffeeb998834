// Package models holds the persisted record types of the studio service.
package models

import "time"

// Identity is the authenticated user record held in session state.
// A nil *Identity means unauthenticated.
type Identity struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	IsAdmin  bool      `json:"is_admin"`
	LoginAt  time.Time `json:"login_at"`
	Language string    `json:"language,omitempty"`
}
