package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzarzor/imagestudio/internal/kvstore"
	"github.com/mzarzor/imagestudio/internal/logging"
	"github.com/mzarzor/imagestudio/internal/server/admin"
	"github.com/mzarzor/imagestudio/internal/server/history"
	"github.com/mzarzor/imagestudio/internal/server/lockout"
	"github.com/mzarzor/imagestudio/internal/server/notify"
	"github.com/mzarzor/imagestudio/internal/server/session"
	"github.com/mzarzor/imagestudio/internal/server/settings"
	"github.com/mzarzor/imagestudio/internal/server/studio"
	"github.com/mzarzor/imagestudio/internal/server/users"
)

type fakeOTPSender struct {
	lastEmail string
	lastCode  string
	err       error
}

func (f *fakeOTPSender) SendOTP(ctx context.Context, email, code string) error {
	f.lastEmail = email
	f.lastCode = code
	return f.err
}

type fakeGenerator struct {
	data []byte
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt, model string) ([]byte, error) {
	return f.data, f.err
}

func (f *fakeGenerator) Transform(ctx context.Context, tool string, image []byte, prompt string) ([]byte, error) {
	return f.data, f.err
}

type fakeImageStore struct {
	puts int
}

func (f *fakeImageStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	f.puts++
	return fmt.Sprintf("images/test/%d", f.puts), nil
}

func (f *fakeImageStore) PresignGet(ctx context.Context, key string) (string, error) {
	return "https://example.com/" + key, nil
}

type testEnv struct {
	server *httptest.Server
	sender *fakeOTPSender
	store  *kvstore.InMemoryStore
}

func newTestEnv(t *testing.T, opts admin.Options) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := logging.Discard()
	store := kvstore.NewInMemoryStore()

	sender := &fakeOTPSender{}
	registry := users.NewRegistry(store, logger, sender, time.Minute)

	guard := lockout.NewGuard(ctx, store, logger, 3, 24*time.Hour)
	adminAuth, err := admin.NewAuthenticator(ctx, store, guard, logger, opts)
	require.NoError(t, err)

	sessions := session.NewManager(ctx, store, logger)
	set := settings.NewManager(store, logger, "en")
	hist := history.NewLog(ctx, store, logger, 30)
	queue := notify.NewQueue(time.Minute)
	st := studio.NewService(&fakeGenerator{data: []byte("png")}, &fakeImageStore{}, hist, queue, set, logger)

	s := NewHTTPServer(":0", logger, "test-secret", time.Hour, store, sessions, registry, adminAuth, guard, st, hist, queue, set)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, sender: sender, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.server.URL+path, buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

// registerAndLogin walks the full signup flow and returns an access token.
func (e *testEnv) registerAndLogin(t *testing.T, name, email, password string) string {
	t.Helper()

	resp, _ := e.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"name": name, "email": email, "password": password, "confirm_password": password,
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NotEmpty(t, e.sender.lastCode)

	resp, body := e.do(t, http.MethodPost, "/api/v1/verify-otp", "", map[string]string{
		"email": email, "code": e.sender.lastCode,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestPing(t *testing.T) {
	env := newTestEnv(t, admin.Options{})
	resp, body := env.do(t, http.MethodGet, "/api/v1/ping", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body["status"])
}

func TestSignupLoginFlow(t *testing.T) {
	env := newTestEnv(t, admin.Options{})

	token := env.registerAndLogin(t, "alice", "alice@example.com", "password1")

	resp, body := env.do(t, http.MethodGet, "/api/v1/session", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	identity, ok := body["identity"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", identity["email"])

	// fresh login with the same credentials
	resp, body = env.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "alice@example.com", "password": "password1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignupValidation(t *testing.T) {
	env := newTestEnv(t, admin.Options{})

	resp, _ := env.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"name": "bob", "email": "bob@example.com", "password": "a", "confirm_password": "b",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	env := newTestEnv(t, admin.Options{})

	resp, _ := env.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"name": "bob", "email": "bob@example.com", "password": "pw", "confirm_password": "pw",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/verify-otp", "", map[string]string{
		"email": "bob@example.com", "code": "000000",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, admin.Options{})

	resp, _ := env.do(t, http.MethodGet, "/api/v1/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/history", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGenerateAndHistory(t *testing.T) {
	env := newTestEnv(t, admin.Options{})
	token := env.registerAndLogin(t, "alice", "alice@example.com", "pw")

	resp, body := env.do(t, http.MethodPost, "/api/v1/generate", token, map[string]string{
		"prompt": "a red fox",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	resp, body = env.do(t, http.MethodGet, "/api/v1/history", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items, ok := body["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/history/"+id, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/v1/history/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHistoryExport(t *testing.T) {
	env := newTestEnv(t, admin.Options{})
	token := env.registerAndLogin(t, "alice", "alice@example.com", "pw")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/generate", token, map[string]string{
		"prompt": "a red fox",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/v1/history/export?format=md", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	raw, err := env.server.Client().Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()

	require.Equal(t, http.StatusOK, raw.StatusCode)
	assert.Equal(t, "attachment; filename=history.md", raw.Header.Get("Content-Disposition"))

	data, err := io.ReadAll(raw.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a red fox")

	resp, _ = env.do(t, http.MethodGet, "/api/v1/history/export?format=xml", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateEmptyPrompt(t *testing.T) {
	env := newTestEnv(t, admin.Options{})
	token := env.registerAndLogin(t, "alice", "alice@example.com", "pw")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/generate", token, map[string]string{
		"prompt": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotificationsAfterGenerate(t *testing.T) {
	env := newTestEnv(t, admin.Options{})
	token := env.registerAndLogin(t, "alice", "alice@example.com", "pw")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/generate", token, map[string]string{"prompt": "cat"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["active_toast"])
	assert.Equal(t, float64(1), body["unread"])

	resp, _ = env.do(t, http.MethodPost, "/api/v1/notifications/read", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/api/v1/notifications", token, nil)
	assert.Equal(t, float64(0), body["unread"])
}

func TestSettingsRoundTrip(t *testing.T) {
	env := newTestEnv(t, admin.Options{})
	token := env.registerAndLogin(t, "alice", "alice@example.com", "pw")

	resp, body := env.do(t, http.MethodGet, "/api/v1/settings", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dark", body["theme"])

	resp, _ = env.do(t, http.MethodPut, "/api/v1/settings", token, map[string]any{
		"theme": "light", "font_scale": 1.25, "show_toasts": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/api/v1/settings", token, nil)
	assert.Equal(t, "light", body["theme"])
}

func TestLanguage(t *testing.T) {
	env := newTestEnv(t, admin.Options{})
	token := env.registerAndLogin(t, "alice", "alice@example.com", "pw")

	_, body := env.do(t, http.MethodGet, "/api/v1/language", token, nil)
	assert.Equal(t, "en", body["language"])

	resp, _ := env.do(t, http.MethodPut, "/api/v1/language", token, map[string]string{"language": "ru"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/api/v1/language", token, nil)
	assert.Equal(t, "ru", body["language"])
}

func TestAdminLoginWithBypassCode(t *testing.T) {
	env := newTestEnv(t, admin.Options{BypassCode: "Dev-Code"})

	resp, body := env.do(t, http.MethodPost, "/api/v1/admin/login", "", map[string]string{
		"code": "dev-code",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/admin/lockout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminLockoutAfterThreeFailures(t *testing.T) {
	env := newTestEnv(t, admin.Options{AdminEmail: "admin@example.com", AdminPassword: "secret"})

	bad := map[string]string{"email": "admin@example.com", "password": "wrong"}
	for i := 0; i < 3; i++ {
		resp, _ := env.do(t, http.MethodPost, "/api/v1/admin/login", "", bad)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// fourth attempt arrives blocked, even with correct credentials
	resp, body := env.do(t, http.MethodPost, "/api/v1/admin/login", "", map[string]string{
		"email": "admin@example.com", "password": "secret",
	})
	assert.Equal(t, http.StatusLocked, resp.StatusCode)
	assert.NotEmpty(t, body["retry_at"])
}

func TestAdminLoginSuccessResetsCounter(t *testing.T) {
	env := newTestEnv(t, admin.Options{AdminEmail: "admin@example.com", AdminPassword: "secret"})

	bad := map[string]string{"email": "admin@example.com", "password": "wrong"}
	for i := 0; i < 2; i++ {
		resp, _ := env.do(t, http.MethodPost, "/api/v1/admin/login", "", bad)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, body := env.do(t, http.MethodPost, "/api/v1/admin/login", "", map[string]string{
		"email": "Admin@Example.com", "password": "secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["access_token"].(string)

	resp, body = env.do(t, http.MethodGet, "/api/v1/admin/lockout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["attempts"])
	assert.Equal(t, false, body["blocked"])
}

func TestBiometricDisabled(t *testing.T) {
	env := newTestEnv(t, admin.Options{})

	resp, _ := env.do(t, http.MethodPost, "/api/v1/admin/biometric", "", map[string]string{
		"capture": "anything",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBiometricLogin(t *testing.T) {
	env := newTestEnv(t, admin.Options{BiometricEnabled: true, BiometricReference: "ref-sig"})

	resp, _ := env.do(t, http.MethodPost, "/api/v1/admin/biometric", "", map[string]string{
		"capture": "wrong-sig",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/v1/admin/biometric", "", map[string]string{
		"capture": "ref-sig",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["access_token"])
}

func TestAdminRoutesForbiddenForUsers(t *testing.T) {
	env := newTestEnv(t, admin.Options{})
	token := env.registerAndLogin(t, "alice", "alice@example.com", "pw")

	resp, _ := env.do(t, http.MethodGet, "/api/v1/admin/lockout", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestBanBlocksLogin(t *testing.T) {
	env := newTestEnv(t, admin.Options{BypassCode: "dev"})
	env.registerAndLogin(t, "alice", "alice@example.com", "pw")

	resp, body := env.do(t, http.MethodPost, "/api/v1/admin/login", "", map[string]string{"code": "dev"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken, _ := body["access_token"].(string)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/admin/ban", adminToken, map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "alice@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/admin/unban", adminToken, map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "alice@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSiteConfigUpdate(t *testing.T) {
	env := newTestEnv(t, admin.Options{BypassCode: "dev"})

	resp, body := env.do(t, http.MethodPost, "/api/v1/admin/login", "", map[string]string{"code": "dev"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken, _ := body["access_token"].(string)

	resp, _ = env.do(t, http.MethodPut, "/api/v1/admin/site-config", adminToken, map[string]any{
		"site_name": "My Studio", "default_model": "turbo", "signups_enabled": false, "max_history": 30,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/api/v1/site-config", "", nil)
	assert.Equal(t, "My Studio", body["site_name"])

	// signups are now closed
	resp, _ = env.do(t, http.MethodPost, "/api/v1/signup", "", map[string]string{
		"name": "bob", "email": "bob@example.com", "password": "pw", "confirm_password": "pw",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminReset(t *testing.T) {
	env := newTestEnv(t, admin.Options{BypassCode: "dev"})
	token := env.registerAndLogin(t, "alice", "alice@example.com", "pw")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/generate", token, map[string]string{"prompt": "cat"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/v1/admin/login", "", map[string]string{"code": "dev"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken, _ := body["access_token"].(string)

	resp, _ = env.do(t, http.MethodPost, "/api/v1/admin/reset", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/api/v1/history", adminToken, nil)
	items, _ := body["items"].([]any)
	assert.Empty(t, items)

	_, body = env.do(t, http.MethodGet, "/api/v1/notifications", adminToken, nil)
	assert.Equal(t, float64(0), body["unread"])

	// registered users survive a reset
	resp, _ = env.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email": "alice@example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogoutClearsSession(t *testing.T) {
	env := newTestEnv(t, admin.Options{})
	token := env.registerAndLogin(t, "alice", "alice@example.com", "pw")

	resp, _ := env.do(t, http.MethodPost, "/api/v1/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body := env.do(t, http.MethodGet, "/api/v1/session", token, nil)
	assert.Nil(t, body["identity"])
}
