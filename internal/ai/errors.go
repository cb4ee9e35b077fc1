package ai

import (
	"errors"
	"fmt"
)

var (
	ErrAIDisabled       = errors.New("AI is disabled")
	ErrInvalidResponse  = errors.New("invalid AI response")
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
)

// ConfigError reports a provider/model/key problem detected before any
// request is sent.
type ConfigError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ConfigError) Error() string {
	if e.Provider == "" {
		return "ai config: " + e.Reason
	}
	return fmt.Sprintf("ai config: provider %q: %s", e.Provider, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// HTTPError is returned for a non-2xx provider response.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("AI request failed: status %d: %s", e.Status, e.Body)
}
