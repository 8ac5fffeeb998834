// Package api is the HTTP client for the studio server's JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mzarzor/imagestudio/internal/common"
	"github.com/mzarzor/imagestudio/internal/server/models"
)

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrBlocked     = errors.New("login blocked")
)

// Client talks to the studio server. Token is set after a successful login
// and sent as a bearer credential on every subsequent call.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs a previously saved access token.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current access token, empty when logged out.
func (c *Client) Token() string { return c.token }

type serverError struct {
	Error   string `json:"error"`
	RetryAt string `json:"retry_at"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	} else {
		buf = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var se serverError
		_ = json.NewDecoder(resp.Body).Decode(&se)
		return statusError(resp.StatusCode, se)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// statusError maps an error reply onto client-side sentinels so commands can
// branch with errors.Is.
func statusError(status int, se serverError) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if se.Error != "" {
			return fmt.Errorf("%w: %s", common.ErrorUnauthorized, se.Error)
		}
		return common.ErrorUnauthorized
	case http.StatusLocked:
		return fmt.Errorf("%w until %s", ErrBlocked, se.RetryAt)
	case http.StatusNotFound:
		return common.ErrorNotFound
	default:
		if se.Error != "" {
			return errors.New(se.Error)
		}
		return fmt.Errorf("server error: status %d", status)
	}
}

type tokenReply struct {
	AccessToken string           `json:"access_token"`
	Identity    *models.Identity `json:"identity"`
}

// Signup starts the registration flow. The server delivers a verification
// code to the given email address.
func (c *Client) Signup(ctx context.Context, name, email, password, confirm string) error {
	return c.do(ctx, http.MethodPost, "/signup", map[string]string{
		"name": name, "email": email, "password": password, "confirm_password": confirm,
	}, nil)
}

// VerifyOTP completes registration and logs in.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*models.Identity, error) {
	var reply tokenReply
	err := c.do(ctx, http.MethodPost, "/verify-otp", map[string]string{"email": email, "code": code}, &reply)
	if err != nil {
		return nil, err
	}
	c.token = reply.AccessToken
	return reply.Identity, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	var reply tokenReply
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{"email": email, "password": password}, &reply)
	if err != nil {
		return nil, err
	}
	c.token = reply.AccessToken
	return reply.Identity, nil
}

// AdminLogin authenticates the admin pair, or the bypass code when set.
func (c *Client) AdminLogin(ctx context.Context, email, password, code string) (*models.Identity, error) {
	var reply tokenReply
	err := c.do(ctx, http.MethodPost, "/admin/login", map[string]string{
		"email": email, "password": password, "code": code,
	}, &reply)
	if err != nil {
		return nil, err
	}
	c.token = reply.AccessToken
	return reply.Identity, nil
}

// Logout clears the server-side session and drops the local token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Session returns the current identity, nil when logged out.
func (c *Client) Session(ctx context.Context) (*models.Identity, error) {
	var reply struct {
		Identity *models.Identity `json:"identity"`
	}
	if err := c.do(ctx, http.MethodGet, "/session", nil, &reply); err != nil {
		return nil, err
	}
	return reply.Identity, nil
}

// Generate renders a prompt into an image and returns the history item.
func (c *Client) Generate(ctx context.Context, prompt, model string) (*models.HistoryItem, error) {
	var item models.HistoryItem
	err := c.do(ctx, http.MethodPost, "/generate", map[string]string{"prompt": prompt, "model": model}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// History lists stored history items, newest first.
func (c *Client) History(ctx context.Context) ([]models.HistoryItem, error) {
	var reply struct {
		Items []models.HistoryItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/history", nil, &reply); err != nil {
		return nil, err
	}
	return reply.Items, nil
}

// DeleteHistoryItem removes one history item by id.
func (c *Client) DeleteHistoryItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/history/"+id, nil, nil)
}

// Notifications returns the notification list plus the unread count.
func (c *Client) Notifications(ctx context.Context) ([]models.Notification, int, error) {
	var reply struct {
		Notifications []models.Notification `json:"notifications"`
		Unread        int                   `json:"unread"`
	}
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &reply); err != nil {
		return nil, 0, err
	}
	return reply.Notifications, reply.Unread, nil
}

// LockoutState reports the admin lockout counters.
func (c *Client) LockoutState(ctx context.Context) (map[string]any, error) {
	var reply map[string]any
	if err := c.do(ctx, http.MethodGet, "/admin/lockout", nil, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// ListUsers returns the registered users and the banned-email list.
func (c *Client) ListUsers(ctx context.Context) (map[string]any, error) {
	var reply map[string]any
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Ban adds an email to the banned list.
func (c *Client) Ban(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/admin/ban", map[string]string{"email": email}, nil)
}

// Reset clears the studio data slots on the server.
func (c *Client) Reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/admin/reset", nil, nil)
}

// Unban removes an email from the banned list.
func (c *Client) Unban(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/admin/unban", map[string]string{"email": email}, nil)
}
