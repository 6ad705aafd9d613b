package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/socdash/socdash/internal/upstream"
)

// OllamaClient calls a local Ollama server's /api/generate endpoint
type OllamaClient struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllamaClient creates an Ollama client
func NewOllamaClient(cfg Config) *OllamaClient {
	return &OllamaClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
	}
}

// Complete sends prompt as a single non-streaming generate call
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	var out ollamaGenerateResponse
	err := postJSON(ctx, c.httpClient, c.timeout, c.baseURL+"/api/generate", nil,
		ollamaGenerateRequest{Model: c.model, Prompt: prompt, Stream: false}, &out)
	if err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", upstream.Unavailable(serviceName, errors.New(out.Error))
	}
	return out.Response, nil
}
