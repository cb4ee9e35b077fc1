// Package ai talks to LLM providers and turns their replies into
// reassignment data for the organizer.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nikbrunner/tidymark/internal/config"
)

// Client sends prompts to the configured provider.
type Client struct {
	providerID string
	p          provider
	apiURL     string
	apiKey     string
	model      string
	maxTokens  int
	timeout    time.Duration

	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient validates the AI settings and returns a client for them.
// Every failure is a *ConfigError; no request is made.
func NewClient(s config.Settings, opts ...Option) (*Client, error) {
	s = s.Normalize()
	if !s.EnableAI {
		return nil, &ConfigError{Reason: "AI is disabled", Err: ErrAIDisabled}
	}

	id := s.AIProvider
	if id == "" {
		id = "openai"
	}
	p, ok := providers[id]
	if !ok {
		return nil, &ConfigError{Provider: id, Reason: "unknown provider, use one of " + strings.Join(Providers(), ", ")}
	}

	key := strings.TrimSpace(s.AIAPIKey)
	if key == "" && !p.keyless {
		return nil, &ConfigError{Provider: id, Reason: "API key is required"}
	}

	model := strings.TrimSpace(s.AIModel)
	if model == "" {
		model = p.defaultModel
	}
	if model == "" {
		return nil, &ConfigError{Provider: id, Reason: "model is required"}
	}
	if strings.Contains(strings.ToLower(model), "reasoner") {
		return nil, &ConfigError{Provider: id, Reason: fmt.Sprintf("reasoning model %q cannot be used for classification", model)}
	}
	if err := p.validateModel(model); err != nil {
		return nil, &ConfigError{Provider: id, Reason: err.Error()}
	}

	apiURL := strings.TrimSpace(s.AIAPIURL)
	if apiURL == "" {
		apiURL = p.defaultURL
	}
	if apiURL == "" {
		return nil, &ConfigError{Provider: id, Reason: "API URL is required"}
	}

	c := &Client{
		providerID: id,
		p:          p,
		apiURL:     apiURL,
		apiKey:     key,
		model:      model,
		maxTokens:  s.MaxTokens,
		timeout:    time.Duration(s.AITimeoutSeconds) * time.Second,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Provider returns the provider id.
func (c *Client) Provider() string { return c.providerID }

// Model returns the model in use.
func (c *Client) Model() string { return c.model }

// Complete sends prompt and returns the raw text of the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint, err := c.p.endpoint(c.apiURL, c.apiKey, c.model)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(c.p.buildRequest(c.model, prompt, c.maxTokens))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.p.headers(req.Header, c.apiKey)

	start := time.Now()
	respBody, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	c.logger.Debug("ai request finished",
		zap.String("provider", c.providerID),
		zap.String("model", c.model),
		zap.Int("status", status),
		zap.Duration("took", time.Since(start)),
	)

	return c.p.parseResponse(respBody)
}

// ListModels returns the models installed in a local Ollama server.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	if c.providerID != "ollama" {
		return nil, &ConfigError{Provider: c.providerID, Reason: "model listing is only supported for ollama"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	u.Path = "/api/tags"
	u.RawQuery = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, _, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("AI request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, &HTTPError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, resp.StatusCode, nil
}
