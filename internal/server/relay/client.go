// Package relay is the thin client for the hosted email-relay collaborator
// used to deliver OTP codes. Template rendering and delivery are the relay's
// business; this client only posts the template id and parameters.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mzarzor/imagestudio/internal/logging"
)

// Client posts OTP delivery requests to the relay endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	templateID string
	httpClient *http.Client
	logger     logging.Logger
}

func NewClient(endpoint, apiKey, templateID string, logger logging.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		templateID: templateID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With("module", "relay"),
	}
}

type sendRequest struct {
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams map[string]any `json:"template_params"`
}

// SendOTP delivers a verification code to email. A non-2xx reply is an error;
// there is no automatic retry, the user resubmits.
func (c *Client) SendOTP(ctx context.Context, email, code string) error {
	body, err := json.Marshal(sendRequest{
		TemplateID: c.templateID,
		UserID:     c.apiKey,
		TemplateParams: map[string]any{
			"email":    email,
			"passcode": code,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("relay rejected request: status %d: %s", resp.StatusCode, msg)
	}

	c.logger.Info(ctx, "otp dispatched", "email", email)
	return nil
}
