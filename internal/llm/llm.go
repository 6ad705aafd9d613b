// Package llm talks to the language model that drafts SQL and explains
// alerts. Two wire protocols are supported: Ollama's generate API and the
// OpenAI chat completions API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/socdash/socdash/internal/upstream"
	"github.com/socdash/socdash/internal/utils"
)

const serviceName = "llm"

// Supported providers
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// LanguageModel completes a single prompt
type LanguageModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures a model backend
type Config struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// DefaultBaseURL returns the conventional endpoint for a provider
func DefaultBaseURL(provider string) string {
	if provider == ProviderOpenAI {
		return "https://api.openai.com"
	}
	return "http://localhost:11434"
}

// New builds the client for cfg.Provider
func New(cfg Config) (LanguageModel, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL(cfg.Provider)
	}
	switch cfg.Provider {
	case ProviderOllama, "":
		return NewOllamaClient(cfg), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}

// maxResponseBytes caps how much of a model response is read
const maxResponseBytes = 4 << 20

// postJSON sends body to url and decodes the JSON reply into out. Transport
// failures and non-2xx replies are reported as upstream errors.
func postJSON(ctx context.Context, client *http.Client, timeout time.Duration, url string, headers map[string]string, body, out interface{}) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		err = upstream.Classify(serviceName, err)
		var upErr *upstream.Error
		if errors.As(err, &upErr) {
			return err
		}
		return upstream.Unavailable(serviceName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return upstream.Classify(serviceName, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return upstream.Unavailable(serviceName, fmt.Errorf("status %d: %s", resp.StatusCode, utils.TruncateText(string(data), 200)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return upstream.Unavailable(serviceName, fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}
