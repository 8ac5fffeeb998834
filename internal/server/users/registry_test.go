package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzarzor/imagestudio/internal/common"
	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
)

type recordingSender struct {
	email string
	code  string
	err   error
}

func (s *recordingSender) SendOTP(ctx context.Context, email, code string) error {
	s.email = email
	s.code = code
	return s.err
}

func testLogger() logging.Logger {
	return logging.Discard()
}

func newTestRegistry(t *testing.T) (*Registry, *recordingSender) {
	t.Helper()
	sender := &recordingSender{}
	r := NewRegistry(kvstore.NewInMemoryStore(), testLogger(), sender, time.Minute)
	return r, sender
}

func TestSignupAndVerify(t *testing.T) {
	ctx := context.Background()
	r, sender := newTestRegistry(t)

	require.NoError(t, r.Signup(ctx, "alice", "alice@example.com", "pw", "pw"))
	require.Equal(t, "alice@example.com", sender.email)
	require.Len(t, sender.code, 6)

	// nothing persisted until the code is verified
	assert.Empty(t, r.Users(ctx))

	user, err := r.VerifyOTP(ctx, "alice@example.com", sender.code)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.True(t, user.Verified)
	assert.NotEmpty(t, user.ID)

	users := r.Users(ctx)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].Email)
}

func TestSignupPasswordMismatch(t *testing.T) {
	r, _ := newTestRegistry(t)
	err := r.Signup(context.Background(), "alice", "alice@example.com", "pw", "other")
	assert.ErrorIs(t, err, common.ErrorPasswordMismatch)
}

func TestSignupTakenNameAndEmail(t *testing.T) {
	ctx := context.Background()
	r, sender := newTestRegistry(t)

	require.NoError(t, r.Signup(ctx, "alice", "alice@example.com", "pw", "pw"))
	_, err := r.VerifyOTP(ctx, "alice@example.com", sender.code)
	require.NoError(t, err)

	err = r.Signup(ctx, "ALICE", "other@example.com", "pw", "pw")
	assert.ErrorIs(t, err, common.ErrorUsernameTaken)

	err = r.Signup(ctx, "bob", "Alice@Example.com", "pw", "pw")
	assert.ErrorIs(t, err, common.ErrorEmailTaken)
}

func TestSignupBannedEmail(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)

	require.NoError(t, r.Ban(ctx, "spam@example.com"))
	err := r.Signup(ctx, "spam", "Spam@Example.com", "pw", "pw")
	assert.ErrorIs(t, err, common.ErrorEmailBanned)
}

func TestSignupDeliveryFailureSurfaces(t *testing.T) {
	r, sender := newTestRegistry(t)
	sender.err = errors.New("relay down")

	err := r.Signup(context.Background(), "alice", "alice@example.com", "pw", "pw")
	assert.ErrorContains(t, err, "relay down")
}

func TestVerifyOTPWrongCode(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(t)

	require.NoError(t, r.Signup(ctx, "alice", "alice@example.com", "pw", "pw"))
	_, err := r.VerifyOTP(ctx, "alice@example.com", "000000")
	assert.ErrorIs(t, err, common.ErrInvalidOTP)
}

func TestVerifyOTPExpired(t *testing.T) {
	ctx := context.Background()
	r, sender := newTestRegistry(t)

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := start
	r.now = func() time.Time { return now }

	require.NoError(t, r.Signup(ctx, "alice", "alice@example.com", "pw", "pw"))

	now = start.Add(2 * time.Minute)
	_, err := r.VerifyOTP(ctx, "alice@example.com", sender.code)
	require.ErrorIs(t, err, common.ErrOTPExpired)

	// expiry is single shot: the pending record is gone
	_, err = r.VerifyOTP(ctx, "alice@example.com", sender.code)
	assert.ErrorIs(t, err, common.ErrInvalidOTP)
}

func TestVerifyOTPSingleUse(t *testing.T) {
	ctx := context.Background()
	r, sender := newTestRegistry(t)

	require.NoError(t, r.Signup(ctx, "alice", "alice@example.com", "pw", "pw"))
	_, err := r.VerifyOTP(ctx, "alice@example.com", sender.code)
	require.NoError(t, err)

	_, err = r.VerifyOTP(ctx, "alice@example.com", sender.code)
	assert.ErrorIs(t, err, common.ErrInvalidOTP)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	r, sender := newTestRegistry(t)

	require.NoError(t, r.Signup(ctx, "alice", "alice@example.com", "pw", "pw"))
	_, err := r.VerifyOTP(ctx, "alice@example.com", sender.code)
	require.NoError(t, err)

	user, err := r.Login(ctx, "Alice@Example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)

	_, err = r.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorInvalidCredential)

	// missing account is indistinguishable from a wrong password
	_, err = r.Login(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorInvalidCredential)
}

func TestBanAndUnban(t *testing.T) {
	ctx := context.Background()
	r, sender := newTestRegistry(t)

	require.NoError(t, r.Signup(ctx, "alice", "alice@example.com", "pw", "pw"))
	_, err := r.VerifyOTP(ctx, "alice@example.com", sender.code)
	require.NoError(t, err)

	require.NoError(t, r.Ban(ctx, "alice@example.com"))
	// double ban is a no-op
	require.NoError(t, r.Ban(ctx, "Alice@Example.com"))
	assert.Len(t, r.BannedEmails(ctx), 1)

	_, err = r.Login(ctx, "alice@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorEmailBanned)

	require.NoError(t, r.Unban(ctx, "ALICE@example.com"))
	assert.Empty(t, r.BannedEmails(ctx))

	_, err = r.Login(ctx, "alice@example.com", "pw")
	assert.NoError(t, err)
}
