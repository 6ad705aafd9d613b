package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/socdash/socdash/internal/upstream"
)

// OpenAIClient calls an OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	baseURL    string
	model      string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// OpenAI API request/response structures
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIClient creates an OpenAI client
func NewOpenAIClient(cfg Config) *OpenAIClient {
	return &OpenAIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
	}
}

// Complete sends prompt as a single user message
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	reqBody := openAIRequest{
		Model:       c.model,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
	}

	var out openAIResponse
	if err := postJSON(ctx, c.httpClient, c.timeout, c.baseURL+"/v1/chat/completions", headers, reqBody, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", upstream.Unavailable(serviceName, errors.New(out.Error.Message))
	}
	if len(out.Choices) == 0 {
		return "", upstream.Unavailable(serviceName, errors.New("no choices in response"))
	}
	return out.Choices[0].Message.Content, nil
}
