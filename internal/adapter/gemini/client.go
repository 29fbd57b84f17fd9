// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"finai/internal/domain"
	"finai/internal/logger"
)

const (
	DefaultModel     = "gemini-2.0-flash"
	DefaultRateLimit = rate.Limit(0.25)
	DefaultBurst     = 5

	// Name is the provider name
	Name = "Gemini"
)

// Client implements domain.LLMProvider
type Client struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	logger  *logger.Logger
}

type clientSettings struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures the client
type ClientOption func(*Client, *clientSettings)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client, _ *clientSettings) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL overrides the API endpoint
func WithBaseURL(baseURL string) ClientOption {
	return func(_ *Client, s *clientSettings) {
		s.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(_ *Client, s *clientSettings) {
		s.httpClient = httpClient
	}
}

// WithRateLimit sets the request rate and burst
func WithRateLimit(limit rate.Limit, burst int) ClientOption {
	return func(c *Client, _ *clientSettings) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client, _ *clientSettings) {
		c.logger = log
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		model:   DefaultModel,
		limiter: rate.NewLimiter(DefaultRateLimit, DefaultBurst),
		logger:  logger.NewSilent(),
	}
	settings := &clientSettings{}
	for _, opt := range opts {
		opt(c, settings)
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  settings.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: settings.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = genaiClient

	return c, nil
}

// Name returns the provider name
func (c *Client) Name() string {
	return Name
}

// Complete generates a reply for the prompt. Context is prepended to the prompt text.
func (c *Client) Complete(ctx context.Context, in domain.CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	prompt := in.Prompt
	if in.Context != "" {
		prompt = "Here is some context that might be helpful: " + in.Context + "\n\n" + prompt
	}

	config := &genai.GenerateContentConfig{}
	if in.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: in.System}}}
	}
	if in.MaxTokens > 0 {
		config.MaxOutputTokens = int32(in.MaxTokens)
	}

	c.logger.Debug().Str("model", c.model).Msg("Gemini generate request")

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse joins the text parts of the first candidate
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text in generated content")
	}
	return text, nil
}

var _ domain.LLMProvider = (*Client)(nil)
