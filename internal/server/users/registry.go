// Package users manages the registered-users and banned-email lists plus the
// OTP-verified signup flow.
package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mzarzor/imagestudio/internal/common"
	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/models"
)

// OTPSender delivers a one-time code out of band. Implemented by the email
// relay client; tests substitute a recorder.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string) error
}

const otpDigits = 6

// pendingSignup holds an account waiting for its code. Pending signups are
// in-memory only: an unfinished signup does not survive a restart, the user
// simply signs up again.
type pendingSignup struct {
	user    models.User
	code    string
	expires time.Time
}

// Registry is the user-account state slice.
type Registry struct {
	store  kvstore.Store
	logger logging.Logger
	sender OTPSender
	otpTTL time.Duration

	// now is a seam for expiry tests.
	now func() time.Time

	mu      sync.Mutex
	pending map[string]pendingSignup // keyed by lowercase email
}

func NewRegistry(store kvstore.Store, logger logging.Logger, sender OTPSender, otpTTL time.Duration) *Registry {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &Registry{
		store:   store,
		logger:  logger.With("module", "users"),
		sender:  sender,
		otpTTL:  otpTTL,
		now:     time.Now,
		pending: make(map[string]pendingSignup),
	}
}

// Signup validates the request, parks the account as pending, and delivers a
// verification code. No persisted state changes until the code is verified.
func (r *Registry) Signup(ctx context.Context, name, email, password, confirm string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if password != confirm {
		return common.ErrorPasswordMismatch
	}
	if r.isBanned(ctx, email) {
		return common.ErrorEmailBanned
	}

	for _, u := range r.Users(ctx) {
		if strings.EqualFold(u.Name, name) {
			return common.ErrorUsernameTaken
		}
		if strings.EqualFold(u.Email, email) {
			return common.ErrorEmailTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return common.ErrorInternal
	}

	code, err := common.MakeOTPCode(otpDigits)
	if err != nil {
		return common.ErrorInternal
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    r.now(),
	}

	r.mu.Lock()
	r.pending[strings.ToLower(email)] = pendingSignup{
		user:    user,
		code:    code,
		expires: r.now().Add(r.otpTTL),
	}
	r.mu.Unlock()

	if err := r.sender.SendOTP(ctx, email, code); err != nil {
		r.logger.Error(ctx, "otp delivery failed", "error", err)
		return err
	}

	r.logger.Info(ctx, "signup pending verification", "email", email)
	return nil
}

// VerifyOTP completes a pending signup. The code is single use: success and
// expiry both drop the pending record.
func (r *Registry) VerifyOTP(ctx context.Context, email, code string) (*models.User, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	r.mu.Lock()
	p, ok := r.pending[key]
	if ok && r.now().After(p.expires) {
		delete(r.pending, key)
		r.mu.Unlock()
		return nil, common.ErrOTPExpired
	}
	r.mu.Unlock()

	if !ok || p.code != strings.TrimSpace(code) {
		return nil, common.ErrInvalidOTP
	}

	p.user.Verified = true

	list := r.Users(ctx)
	list = append(list, p.user)
	if err := kvstore.Write(ctx, r.store, kvstore.KeyRegisteredUsers, list); err != nil {
		return nil, err
	}

	r.mu.Lock()
	delete(r.pending, key)
	r.mu.Unlock()

	r.logger.Info(ctx, "user registered", "user_id", p.user.ID)
	return &p.user, nil
}

// Login checks the banned list first, then the stored bcrypt hash. A missing
// account and a wrong password are indistinguishable to the caller.
func (r *Registry) Login(ctx context.Context, email, password string) (*models.User, error) {
	if r.isBanned(ctx, email) {
		return nil, common.ErrorEmailBanned
	}

	for _, u := range r.Users(ctx) {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
				user := u
				return &user, nil
			}
			break
		}
	}
	return nil, common.ErrorInvalidCredential
}

// Users returns the registered-users list from its slot.
func (r *Registry) Users(ctx context.Context) []models.User {
	return kvstore.Read(ctx, r.store, kvstore.KeyRegisteredUsers, []models.User{})
}

// BannedEmails returns the banned-email list from its slot.
func (r *Registry) BannedEmails(ctx context.Context) []string {
	return kvstore.Read(ctx, r.store, kvstore.KeyBannedEmails, []string{})
}

// Ban adds email to the banned list. Adding an already-banned email is a
// no-op.
func (r *Registry) Ban(ctx context.Context, email string) error {
	list := r.BannedEmails(ctx)
	for _, e := range list {
		if strings.EqualFold(e, email) {
			return nil
		}
	}
	list = append(list, email)
	return kvstore.Write(ctx, r.store, kvstore.KeyBannedEmails, list)
}

// Unban removes email from the banned list.
func (r *Registry) Unban(ctx context.Context, email string) error {
	list := r.BannedEmails(ctx)
	out := list[:0]
	for _, e := range list {
		if !strings.EqualFold(e, email) {
			out = append(out, e)
		}
	}
	return kvstore.Write(ctx, r.store, kvstore.KeyBannedEmails, out)
}

func (r *Registry) isBanned(ctx context.Context, email string) bool {
	for _, e := range r.BannedEmails(ctx) {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}
