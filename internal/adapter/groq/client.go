// Package groq provides a client for the Groq OpenAI-compatible chat completion API
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"finai/internal/domain"
	"finai/internal/logger"
)

const (
	DefaultBaseURL   = "https://api.groq.com/openai/v1"
	DefaultModel     = "llama3-8b-8192"
	DefaultTimeout   = 60 * time.Second
	DefaultMaxTokens = 1024
	DefaultRateLimit = rate.Limit(0.5)
	DefaultBurst     = 5

	// Name is the provider name
	Name = "Groq"
)

// Client implements domain.LLMProvider
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *logger.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets the request rate and burst
func WithRateLimit(limit rate.Limit, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = log
	}
}

// NewClient creates a new Groq client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		model:       DefaultModel,
		temperature: 0.7,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(DefaultRateLimit, DefaultBurst),
		logger:  logger.NewSilent(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the provider name
func (c *Client) Name() string {
	return Name
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Complete sends the system prompt, optional context and user prompt, and returns the reply text
func (c *Client) Complete(ctx context.Context, in domain.CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	messages := make([]message, 0, 3)
	if in.System != "" {
		messages = append(messages, message{Role: "system", Content: in.System})
	}
	if in.Context != "" {
		messages = append(messages, message{Role: "system", Content: "Here is some context that might be helpful: " + in.Context})
	}
	messages = append(messages, message{Role: "user", Content: in.Prompt})

	maxTokens := in.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	jsonData, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug().Str("model", c.model).Int("messages", len(messages)).Msg("Groq completion request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Groq: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Groq returned error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("Groq returned no choices")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("Groq returned an empty completion")
	}

	return text, nil
}

var _ domain.LLMProvider = (*Client)(nil)
