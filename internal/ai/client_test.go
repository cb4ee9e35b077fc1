package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/nikbrunner/tidymark/internal/ai"
	"github.com/nikbrunner/tidymark/internal/config"
)

func settings(provider, key, model, url string) config.Settings {
	s := config.Default()
	s.EnableAI = true
	s.AIProvider = provider
	s.AIAPIKey = key
	s.AIModel = model
	s.AIAPIURL = url
	return s
}

func TestNewClient_ConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
		contains string
	}{
		{"disabled", config.Default(), "disabled"},
		{"unknown provider", settings("mystery", "k", "", ""), "unknown provider"},
		{"missing key", settings("openai", "", "", ""), "API key is required"},
		{"reasoner rejected", settings("openai", "k", "o1-reasoner", ""), "reasoning model"},
		{"deepseek reasoner rejected", settings("deepseek", "k", "deepseek-reasoner", ""), "reasoning model"},
		{"deepseek allow-list", settings("deepseek", "k", "deepseek-coder", ""), "not supported"},
		{"claude allow-list", settings("claude", "k", "gpt-4o", ""), "not supported"},
		{"gemini allow-list", settings("gemini", "k", "claude-3", ""), "not supported"},
		{"ernie allow-list", settings("ernie", "k", "qwen", ""), "not supported"},
		{"custom needs url", settings("custom", "k", "my-model", ""), "API URL is required"},
		{"custom needs model", settings("custom", "k", "", "http://localhost:1/v1/chat/completions"), "model is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ai.NewClient(tt.settings)
			var cfgErr *ai.ConfigError
			assert.Assert(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.ErrorContains(t, err, tt.contains)
		})
	}

	_, err := ai.NewClient(config.Default())
	assert.Assert(t, errors.Is(err, ai.ErrAIDisabled))
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := ai.NewClient(settings("ollama", "", "", ""))
	assert.NilError(t, err)
	assert.Equal(t, c.Provider(), "ollama")
	assert.Equal(t, c.Model(), "llama3.1")

	c, err = ai.NewClient(settings("", "k", "", ""))
	assert.NilError(t, err)
	assert.Equal(t, c.Provider(), "openai")
}

type captured struct {
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func fakeProvider(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.header = r.Header.Clone()
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got.body)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestComplete_Providers(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		key      string
		model    string
		path     string
		response string
		check    func(t *testing.T, got *captured)
	}{
		{
			name: "openai", provider: "openai", key: "sk-test", path: "/v1/chat/completions",
			response: `{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`,
			check: func(t *testing.T, got *captured) {
				assert.Equal(t, got.header.Get("Authorization"), "Bearer sk-test")
				assert.Equal(t, got.body["temperature"], 0.2)
			},
		},
		{
			name: "deepseek", provider: "deepseek", key: "ds", path: "/chat/completions",
			response: `{"choices":[{"message":{"content":"hello"}}]}`,
			check: func(t *testing.T, got *captured) {
				assert.Equal(t, got.body["model"], "deepseek-chat")
			},
		},
		{
			name: "claude", provider: "claude", key: "ant", path: "/v1/messages",
			response: `{"content":[{"type":"text","text":"hello"}]}`,
			check: func(t *testing.T, got *captured) {
				assert.Equal(t, got.header.Get("x-api-key"), "ant")
				assert.Equal(t, got.header.Get("anthropic-version"), "2023-06-01")
				assert.Equal(t, got.header.Get("Authorization"), "")
			},
		},
		{
			name: "gemini", provider: "gemini", key: "gk", model: "gemini-1.5-pro", path: "/v1beta/models/{model}:generateContent",
			response: `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`,
			check: func(t *testing.T, got *captured) {
				assert.Equal(t, got.path, "/v1beta/models/gemini-1.5-pro:generateContent")
				assert.Equal(t, got.query, "key=gk")
				gen := got.body["generationConfig"].(map[string]any)
				assert.Equal(t, gen["temperature"], 0.2)
			},
		},
		{
			name: "ollama", provider: "ollama", path: "/api/chat",
			response: `{"message":{"role":"assistant","content":"hello"},"done":true}`,
			check: func(t *testing.T, got *captured) {
				assert.Equal(t, got.body["stream"], false)
				assert.Equal(t, got.header.Get("Authorization"), "")
			},
		},
		{
			name: "ernie", provider: "ernie", key: "tok", path: "/chat/completions",
			response: `{"result":"hello"}`,
			check: func(t *testing.T, got *captured) {
				assert.Equal(t, got.query, "access_token=tok")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := fakeProvider(t, http.StatusOK, tt.response)
			c, err := ai.NewClient(settings(tt.provider, tt.key, tt.model, srv.URL+tt.path))
			assert.NilError(t, err)

			text, err := c.Complete(context.Background(), "classify these")
			assert.NilError(t, err)
			assert.Equal(t, text, "hello")
			assert.Equal(t, got.header.Get("Content-Type"), "application/json")
			tt.check(t, got)
		})
	}
}

func TestComplete_HTTPError(t *testing.T) {
	srv, _ := fakeProvider(t, http.StatusTooManyRequests, `{"error":"slow down"}`)
	c, err := ai.NewClient(settings("openai", "k", "", srv.URL))
	assert.NilError(t, err)

	_, err = c.Complete(context.Background(), "x")
	var httpErr *ai.HTTPError
	assert.Assert(t, errors.As(err, &httpErr))
	assert.Equal(t, httpErr.Status, http.StatusTooManyRequests)
	assert.ErrorContains(t, err, "429")
	assert.ErrorContains(t, err, "slow down")
}

func TestComplete_InvalidShape(t *testing.T) {
	srv, _ := fakeProvider(t, http.StatusOK, `{"unexpected":true}`)
	c, err := ai.NewClient(settings("claude", "k", "", srv.URL))
	assert.NilError(t, err)

	_, err = c.Complete(context.Background(), "x")
	assert.Assert(t, errors.Is(err, ai.ErrInvalidResponse))
}

func TestComplete_ErnieErrorBody(t *testing.T) {
	srv, _ := fakeProvider(t, http.StatusOK, `{"error_code":110,"error_msg":"Access token invalid"}`)
	c, err := ai.NewClient(settings("ernie", "k", "", srv.URL))
	assert.NilError(t, err)

	_, err = c.Complete(context.Background(), "x")
	assert.Assert(t, errors.Is(err, ai.ErrInvalidResponse))
	assert.ErrorContains(t, err, "Access token invalid")
}

func TestComplete_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := ai.NewClient(settings("openai", "k", "", srv.URL))
	assert.NilError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = c.Complete(ctx, "x")
	assert.Assert(t, err != nil)
	assert.Assert(t, time.Since(start) < 5*time.Second)
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" || r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:latest"},{"name":"qwen2.5:7b"}]}`))
	}))
	defer srv.Close()

	c, err := ai.NewClient(settings("ollama", "", "", srv.URL+"/api/chat"))
	assert.NilError(t, err)

	models, err := c.ListModels(context.Background())
	assert.NilError(t, err)
	assert.DeepEqual(t, models, []string{"llama3.1:latest", "qwen2.5:7b"})

	c, err = ai.NewClient(settings("openai", "k", "", ""))
	assert.NilError(t, err)
	_, err = c.ListModels(context.Background())
	assert.Assert(t, strings.Contains(err.Error(), "only supported for ollama"))
}
