// Package genapi is the thin client for the hosted image-generation
// collaborator. Generation and editing algorithms live on the other side of
// the wire; this client moves prompts in and image bytes out.
package genapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mzarzor/imagestudio/internal/logging"
)

// Smart-tool identifiers accepted by Transform.
const (
	ToolRemoveBackground = "remove-background"
	ToolUpscale          = "upscale"
	ToolRestyle          = "restyle"
)

// Generator is the collaborator interface the studio service depends on.
type Generator interface {
	// Generate renders a prompt into image bytes.
	Generate(ctx context.Context, prompt, model string) ([]byte, error)

	// Transform applies a smart tool to existing image bytes.
	Transform(ctx context.Context, tool string, image []byte, prompt string) ([]byte, error)
}

// Client talks to the generation endpoint over HTTP.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
}

func NewClient(endpoint, apiKey string, logger logging.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger.With("module", "genapi"),
	}
}

// Generate requests an image for prompt from the collaborator. The prompt
// travels in the path, the model as a query parameter.
func (c *Client) Generate(ctx context.Context, prompt, model string) ([]byte, error) {
	u := fmt.Sprintf("%s/%s", c.endpoint, url.PathEscape(prompt))
	if model != "" {
		u += "?model=" + url.QueryEscape(model)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	c.authorize(req)

	return c.do(ctx, req)
}

type transformRequest struct {
	Tool   string `json:"tool"`
	Prompt string `json:"prompt,omitempty"`
	Image  string `json:"image"` // base64-encoded input bytes
}

// Transform posts image bytes plus a tool id and returns the processed bytes.
func (c *Client) Transform(ctx context.Context, tool string, image []byte, prompt string) ([]byte, error) {
	body, err := json.Marshal(transformRequest{
		Tool:   tool,
		Prompt: prompt,
		Image:  base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal transform request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/transform", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build transform request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	return c.do(ctx, req)
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generation endpoint returned status %d: %s", resp.StatusCode, msg)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read generation response: %w", err)
	}

	c.logger.Debug(ctx, "image received", "bytes", len(data))
	return data, nil
}
