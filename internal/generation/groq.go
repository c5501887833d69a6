package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqConfig holds Groq credentials and model selection.
type GroqConfig struct {
	APIKey  string `env:"GROQ_API_KEY,required"`
	ModelID string `env:"GROQ_MODEL_ID" envDefault:"llama-3.3-70b-versatile"`
}

// Groq calls the Groq OpenAI-compatible chat completions API.
type Groq struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// GroqOption configures a Groq provider.
type GroqOption func(*Groq)

// WithGroqBaseURL overrides the API endpoint. Used by tests.
func WithGroqBaseURL(u string) GroqOption {
	return func(g *Groq) { g.baseURL = u }
}

// WithGroqHTTPClient overrides the HTTP client.
func WithGroqHTTPClient(c *http.Client) GroqOption {
	return func(g *Groq) { g.client = c }
}

// NewGroq creates a Groq provider with a 30 second request timeout.
func NewGroq(cfg GroqConfig, opts ...GroqOption) *Groq {
	g := &Groq{
		apiKey:  cfg.APIKey,
		model:   cfg.ModelID,
		baseURL: defaultGroqBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Groq) Name() string  { return ProviderGroq }
func (g *Groq) Model() string { return g.model }

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Groq) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(groqRequest{
		Model:       g.model,
		Messages:    []groqMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   4096,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode groq request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create groq request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", errors.Join(ErrUpstreamUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Join(ErrUpstreamUnreachable, err)
	}

	var out groqResponse
	if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("failed to decode groq response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", &UpstreamError{Provider: ProviderGroq, Status: resp.StatusCode, Message: msg}
	}

	if len(out.Choices) == 0 {
		return "", ErrEmptyResult
	}
	return out.Choices[0].Message.Content, nil
}
