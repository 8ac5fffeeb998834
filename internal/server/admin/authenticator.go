// Package admin implements the admin authentication flow: credential
// evaluation ordered behind the lockout guard, the developer bypass code,
// and the biometric path. Credentials come from server configuration or the
// runtime-editable admin slot, never from values baked into shipped code.
package admin

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mzarzor/imagestudio/internal/common"
	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/lockout"
	"github.com/mzarzor/imagestudio/internal/server/models"
)

// Authenticator evaluates admin login attempts against the guard and the
// stored admin identity.
type Authenticator struct {
	store  kvstore.Store
	guard  *lockout.Guard
	logger logging.Logger

	bypassCode         string
	biometricEnabled   bool
	biometricReference string
}

// Options carries the configured credential material.
type Options struct {
	// AdminEmail / AdminPassword seed the admin identity slot when it is
	// absent. Empty leaves the slot untouched (admin login disabled until
	// the slot is written some other way).
	AdminEmail    string
	AdminPassword string

	// BypassCode, when non-empty, is accepted case-insensitively in place
	// of credentials.
	BypassCode string

	BiometricEnabled   bool
	BiometricReference string
}

// NewAuthenticator constructs the authenticator and, when credentials are
// configured and no admin identity slot exists yet, seeds the slot with the
// bcrypt-hashed configured pair.
func NewAuthenticator(ctx context.Context, store kvstore.Store, guard *lockout.Guard, logger logging.Logger, opts Options) (*Authenticator, error) {
	a := &Authenticator{
		store:              store,
		guard:              guard,
		logger:             logger.With("module", "admin"),
		bypassCode:         opts.BypassCode,
		biometricEnabled:   opts.BiometricEnabled,
		biometricReference: opts.BiometricReference,
	}

	if opts.AdminEmail != "" && opts.AdminPassword != "" {
		existing := kvstore.Read(ctx, store, kvstore.KeyAdminIdentity, models.AdminIdentity{})
		if existing.Email == "" {
			if err := a.UpdateCredentials(ctx, opts.AdminEmail, opts.AdminPassword); err != nil {
				return nil, err
			}
		}
	}

	return a, nil
}

// Login evaluates one submit attempt.
//
// Order when the guard is open:
//  1. the developer bypass code, compared case-insensitively; a match wins
//     regardless of the email/password fields;
//  2. email (case-insensitive) plus password against the stored identity;
//  3. failure, which consumes an attempt.
//
// While blocked the attempt is rejected with *lockout.BlockedError and the
// counter is untouched.
func (a *Authenticator) Login(ctx context.Context, email, password, code string) error {
	if err := a.guard.Check(ctx); err != nil {
		return err
	}

	if a.bypassCode != "" && code != "" && strings.EqualFold(code, a.bypassCode) {
		a.guard.Reset(ctx)
		a.logger.Info(ctx, "admin login via bypass code")
		return nil
	}

	stored := kvstore.Read(ctx, a.store, kvstore.KeyAdminIdentity, models.AdminIdentity{})
	if stored.Email != "" && strings.EqualFold(email, stored.Email) {
		if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) == nil {
			a.guard.Reset(ctx)
			a.logger.Info(ctx, "admin login", "email", stored.Email)
			return nil
		}
	}

	state := a.guard.RecordFailure(ctx)
	a.logger.Warn(ctx, "admin login failed", "attempts", state.Attempts)
	return common.ErrorInvalidCredential
}

// BiometricLogin evaluates a capture signature against the enrolled
// reference. It bypasses email/password entirely but is gated by the
// enablement flag and an enrolled reference. Capture mismatches and
// permission failures never consume a lockout attempt; a successful match
// resets the guard even from the blocked state.
func (a *Authenticator) BiometricLogin(ctx context.Context, capture string) error {
	if !a.biometricEnabled || a.biometricReference == "" {
		return common.ErrorUnauthorized
	}

	if subtle.ConstantTimeCompare([]byte(capture), []byte(a.biometricReference)) != 1 {
		return common.ErrorInvalidCredential
	}

	a.guard.Reset(ctx)
	a.logger.Info(ctx, "admin login via biometric capture")
	return nil
}

// UpdateCredentials rewrites the runtime-editable admin identity slot with a
// bcrypt hash of the new password.
func (a *Authenticator) UpdateCredentials(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return kvstore.Write(ctx, a.store, kvstore.KeyAdminIdentity, models.AdminIdentity{
		Email:        email,
		PasswordHash: string(hash),
	})
}
