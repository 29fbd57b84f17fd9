// Package finnhub provides a client for the Finnhub quote and news API
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"finai/internal/domain"
	"finai/internal/logger"
	"finai/internal/utils"
)

const (
	DefaultBaseURL = "https://finnhub.io/api/v1"
	DefaultTimeout = 10 * time.Second
	// Free tier: 60 calls per minute
	DefaultRateLimit = rate.Limit(1)
	DefaultBurst     = 10

	// Name is the display name used as the quote source
	Name = "Finnhub"
)

// Client implements domain.QuoteProvider, domain.NewsProvider and domain.CompanyNewsProvider
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

// NewClient creates a new Finnhub client
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
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Finnhub API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("endpoint", path).Msg("Finnhub request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Timestamp     int64   `json:"t"`
}

// GetQuote fetches the current quote for symbol. Finnhub reports no volume.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	var resp quoteResponse
	if err := c.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}

	// Unknown symbols come back as all zeros
	if resp.Current == 0 {
		return nil, fmt.Errorf("no quote for symbol %s", symbol)
	}

	tradingDay := ""
	if resp.Timestamp > 0 {
		tradingDay = time.Unix(resp.Timestamp, 0).In(utils.GetLocation()).Format(time.DateOnly)
	}

	return &domain.Quote{
		Symbol:           strings.ToUpper(symbol),
		Price:            resp.Current,
		Change:           resp.Change,
		ChangePercent:    resp.ChangePercent,
		High:             resp.High,
		Low:              resp.Low,
		LatestTradingDay: tradingDay,
		Source:           Name,
	}, nil
}

type newsItem struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

func (n newsItem) article() domain.Article {
	return domain.Article{
		Title:       n.Headline,
		Summary:     n.Summary,
		URL:         n.URL,
		Source:      n.Source,
		ImageURL:    n.Image,
		PublishedAt: time.Unix(n.Datetime, 0).UTC(),
		Category:    n.Category,
	}
}

func (c *Client) generalNews(ctx context.Context) ([]newsItem, error) {
	var items []newsItem
	if err := c.get(ctx, "/news", url.Values{"category": {"general"}}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// LatestNews returns up to limit general market headlines
func (c *Client) LatestNews(ctx context.Context, limit int) ([]domain.Article, error) {
	items, err := c.generalNews(ctx)
	if err != nil {
		return nil, err
	}
	return collect(items, limit, func(newsItem) bool { return true }), nil
}

// SearchNews filters general headlines by query. Finnhub has no free-text search.
func (c *Client) SearchNews(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	items, err := c.generalNews(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	return collect(items, limit, func(n newsItem) bool {
		return strings.Contains(strings.ToLower(n.Headline), needle) ||
			strings.Contains(strings.ToLower(n.Summary), needle)
	}), nil
}

// CompanyNews returns up to limit articles about symbol published between from and to
func (c *Client) CompanyNews(ctx context.Context, symbol string, from, to time.Time, limit int) ([]domain.Article, error) {
	params := url.Values{
		"symbol": {strings.ToUpper(symbol)},
		"from":   {from.Format(time.DateOnly)},
		"to":     {to.Format(time.DateOnly)},
	}

	var items []newsItem
	if err := c.get(ctx, "/company-news", params, &items); err != nil {
		return nil, err
	}

	return collect(items, limit, func(newsItem) bool { return true }), nil
}

// collect converts items that have a headline and url and match keep
func collect(items []newsItem, limit int, keep func(newsItem) bool) []domain.Article {
	articles := make([]domain.Article, 0, min(limit, len(items)))
	for _, item := range items {
		if len(articles) == limit {
			break
		}
		if item.Headline == "" || item.URL == "" || !keep(item) {
			continue
		}
		articles = append(articles, item.article())
	}
	return articles
}

var (
	_ domain.QuoteProvider       = (*Client)(nil)
	_ domain.NewsProvider        = (*Client)(nil)
	_ domain.CompanyNewsProvider = (*Client)(nil)
)
