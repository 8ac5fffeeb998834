package models

import "time"

// User is a registered account in the registered-users list.
// PasswordHash is a bcrypt hash, never the clear-text password.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	Verified     bool      `json:"verified"`
}

// AdminIdentity is the runtime-editable admin credential record stored under
// its own slot. Password is stored as a bcrypt hash; the default record is
// sourced from server configuration, never baked into shipped code.
type AdminIdentity struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}
