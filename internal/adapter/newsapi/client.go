// Package newsapi provides a client for newsapi.org
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"finai/internal/domain"
	"finai/internal/logger"
)

const (
	DefaultBaseURL   = "https://newsapi.org/v2"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = rate.Limit(1)
	DefaultBurst     = 5

	// Name is the provider name
	Name = "NewsAPI"
)

// Client implements domain.NewsProvider
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
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

// NewClient creates a new NewsAPI client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
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

// APIError represents an API error
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("NewsAPI error: %s (status: %d, code: %s)", e.Message, e.StatusCode, e.Code)
}

type articlesResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		URLToImage  string    `json:"urlToImage"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// get performs a rate-limited GET request and converts the articles
func (c *Client) get(ctx context.Context, path string, params url.Values, category string) ([]domain.Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	c.logger.Debug().Str("endpoint", path).Msg("NewsAPI request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload articlesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || payload.Status != "ok" {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: payload.Code, Message: payload.Message}
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		// Removed articles are returned as placeholders
		if a.Title == "" || a.URL == "" || a.Title == "[Removed]" {
			continue
		}
		articles = append(articles, domain.Article{
			Title:       a.Title,
			Summary:     a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			ImageURL:    a.URLToImage,
			PublishedAt: a.PublishedAt,
			Category:    category,
		})
	}

	return articles, nil
}

// LatestNews returns business top headlines
func (c *Client) LatestNews(ctx context.Context, limit int) ([]domain.Article, error) {
	params := url.Values{
		"category": {"business"},
		"language": {"en"},
		"pageSize": {strconv.Itoa(limit)},
	}
	return c.get(ctx, "/top-headlines", params, "business")
}

// SearchNews returns the newest articles matching query
func (c *Client) SearchNews(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	params := url.Values{
		"q":        {query},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {strconv.Itoa(limit)},
	}
	return c.get(ctx, "/everything", params, "")
}

var _ domain.NewsProvider = (*Client)(nil)
