package ai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const temperature = 0.2

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// provider describes how to talk to one provider family.
type provider struct {
	defaultURL   string
	defaultModel string
	keyless      bool

	endpoint      func(base, key, model string) (string, error)
	headers       func(h http.Header, key string)
	buildRequest  func(model, prompt string, maxTokens int) any
	parseResponse func(body []byte) (string, error)
	validateModel func(model string) error
}

var providers = map[string]provider{
	"openai": {
		defaultURL:    "https://api.openai.com/v1/chat/completions",
		defaultModel:  "gpt-4o-mini",
		endpoint:      plainEndpoint,
		headers:       bearerAuth,
		buildRequest:  chatCompletionsRequest,
		parseResponse: chatCompletionsText,
		validateModel: anyModel,
	},
	"deepseek": {
		defaultURL:    "https://api.deepseek.com/chat/completions",
		defaultModel:  "deepseek-chat",
		endpoint:      plainEndpoint,
		headers:       bearerAuth,
		buildRequest:  chatCompletionsRequest,
		parseResponse: chatCompletionsText,
		validateModel: exactModels("deepseek-chat"),
	},
	"custom": {
		endpoint:      plainEndpoint,
		headers:       bearerAuth,
		buildRequest:  chatCompletionsRequest,
		parseResponse: chatCompletionsText,
		validateModel: anyModel,
	},
	"claude": {
		defaultURL:    "https://api.anthropic.com/v1/messages",
		defaultModel:  "claude-3-5-haiku-latest",
		endpoint:      plainEndpoint,
		headers:       anthropicAuth,
		buildRequest:  anthropicRequest,
		parseResponse: anthropicText,
		validateModel: modelPrefix("claude-"),
	},
	"gemini": {
		defaultURL:    "https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent",
		defaultModel:  "gemini-1.5-flash",
		endpoint:      queryKeyEndpoint("key"),
		headers:       noAuth,
		buildRequest:  geminiRequest,
		parseResponse: geminiText,
		validateModel: modelPrefix("gemini-"),
	},
	"ollama": {
		defaultURL:    "http://localhost:11434/api/chat",
		defaultModel:  "llama3.1",
		keyless:       true,
		endpoint:      plainEndpoint,
		headers:       optionalBearerAuth,
		buildRequest:  ollamaRequest,
		parseResponse: ollamaText,
		validateModel: anyModel,
	},
	"ernie": {
		defaultURL:    "https://aip.baidubce.com/rpc/2.0/ai_custom/v1/wenxinworkshop/chat/{model}",
		defaultModel:  "ernie-speed-128k",
		endpoint:      queryKeyEndpoint("access_token"),
		headers:       noAuth,
		buildRequest:  ernieRequest,
		parseResponse: ernieText,
		validateModel: modelPrefix("ernie"),
	},
}

// Providers returns the supported provider ids.
func Providers() []string {
	return []string{"openai", "deepseek", "claude", "gemini", "ollama", "ernie", "custom"}
}

// endpoints

func plainEndpoint(base, _, model string) (string, error) {
	return strings.ReplaceAll(base, "{model}", model), nil
}

func queryKeyEndpoint(param string) func(base, key, model string) (string, error) {
	return func(base, key, model string) (string, error) {
		u, err := url.Parse(strings.ReplaceAll(base, "{model}", model))
		if err != nil {
			return "", fmt.Errorf("parse api url: %w", err)
		}
		q := u.Query()
		q.Set(param, key)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
}

// auth

func bearerAuth(h http.Header, key string) {
	h.Set("Authorization", "Bearer "+key)
}

func optionalBearerAuth(h http.Header, key string) {
	if key != "" {
		bearerAuth(h, key)
	}
}

func anthropicAuth(h http.Header, key string) {
	h.Set("x-api-key", key)
	h.Set("anthropic-version", "2023-06-01")
}

func noAuth(http.Header, string) {}

// model validation

func anyModel(string) error { return nil }

func exactModels(allowed ...string) func(string) error {
	return func(model string) error {
		for _, a := range allowed {
			if model == a {
				return nil
			}
		}
		return fmt.Errorf("model %q is not supported, use one of %s", model, strings.Join(allowed, ", "))
	}
}

func modelPrefix(prefix string) func(string) error {
	return func(model string) error {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return nil
		}
		return fmt.Errorf("model %q is not supported, expected a %s* model", model, prefix)
	}
}

// request bodies

func chatCompletionsRequest(model, prompt string, maxTokens int) any {
	return map[string]any{
		"model":       model,
		"messages":    []chatMessage{{Role: "user", Content: prompt}},
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}
}

func anthropicRequest(model, prompt string, maxTokens int) any {
	return map[string]any{
		"model":       model,
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"messages":    []chatMessage{{Role: "user", Content: prompt}},
	}
}

func geminiRequest(_, prompt string, maxTokens int) any {
	return map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     temperature,
			"maxOutputTokens": maxTokens,
		},
	}
}

func ollamaRequest(model, prompt string, maxTokens int) any {
	return map[string]any{
		"model":    model,
		"messages": []chatMessage{{Role: "user", Content: prompt}},
		"stream":   false,
		"options": map[string]any{
			"temperature": temperature,
			"num_predict": maxTokens,
		},
	}
}

func ernieRequest(_, prompt string, maxTokens int) any {
	return map[string]any{
		"messages":          []chatMessage{{Role: "user", Content: prompt}},
		"temperature":       temperature,
		"max_output_tokens": maxTokens,
	}
}

// response text extraction

func chatCompletionsText(body []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func anthropicText(body []byte) (string, error) {
	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("%w: no content blocks", ErrInvalidResponse)
	}
	return resp.Content[0].Text, nil
}

func geminiText(body []byte) (string, error) {
	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrInvalidResponse)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func ollamaText(body []byte) (string, error) {
	var resp struct {
		Message *chatMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Message == nil {
		return "", fmt.Errorf("%w: no message", ErrInvalidResponse)
	}
	return resp.Message.Content, nil
}

func ernieText(body []byte) (string, error) {
	var resp struct {
		Result    *string `json:"result"`
		ErrorCode int     `json:"error_code"`
		ErrorMsg  string  `json:"error_msg"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	// ERNIE reports failures with HTTP 200.
	if resp.ErrorCode != 0 {
		return "", fmt.Errorf("%w: ernie error %d: %s", ErrInvalidResponse, resp.ErrorCode, resp.ErrorMsg)
	}
	if resp.Result == nil {
		return "", fmt.Errorf("%w: no result", ErrInvalidResponse)
	}
	return *resp.Result, nil
}
