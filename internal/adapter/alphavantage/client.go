// Package alphavantage provides a client for the Alpha Vantage market data API
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"finai/internal/domain"
	"finai/internal/logger"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co"
	DefaultTimeout = 10 * time.Second
	// The free tier allows 5 requests per minute
	DefaultRateLimit = rate.Limit(5.0 / 60.0)
	DefaultBurst     = 5

	// Name is the display name used as the quote source
	Name = "Alpha Vantage"
)

// Client implements domain.QuoteProvider, domain.SymbolSearcher and domain.HistoryProvider
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

// NewClient creates a new Alpha Vantage client
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
	Function   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Alpha Vantage API error: %s (status: %d, function: %s)", e.Message, e.StatusCode, e.Function)
}

// get performs a rate-limited query call and decodes the JSON body into result
func (c *Client) get(ctx context.Context, function string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("function", function).Msg("Alpha Vantage request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Function: function}
	}

	// Throttling and bad keys come back as 200 with a Note, Information or Error Message field
	var notice struct {
		Note         string `json:"Note"`
		Information  string `json:"Information"`
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(body, &notice); err == nil {
		if msg := firstNonEmpty(notice.ErrorMessage, notice.Note, notice.Information); msg != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: msg, Function: function}
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		High             string `json:"03. high"`
		Low              string `json:"04. low"`
		Price            string `json:"05. price"`
		Volume           string `json:"06. volume"`
		LatestTradingDay string `json:"07. latest trading day"`
		Change           string `json:"09. change"`
		ChangePercent    string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// GetQuote fetches the current quote for symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	var resp globalQuoteResponse
	if err := c.get(ctx, "GLOBAL_QUOTE", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}

	gq := resp.GlobalQuote
	if gq.Symbol == "" || gq.Price == "" {
		return nil, fmt.Errorf("no quote for symbol %s", symbol)
	}

	return &domain.Quote{
		Symbol:           gq.Symbol,
		Price:            parseFloat(gq.Price),
		Change:           parseFloat(gq.Change),
		ChangePercent:    parseFloat(strings.TrimSuffix(gq.ChangePercent, "%")),
		Volume:           parseInt(gq.Volume),
		High:             parseFloat(gq.High),
		Low:              parseFloat(gq.Low),
		LatestTradingDay: gq.LatestTradingDay,
		Source:           Name,
	}, nil
}

type symbolSearchResponse struct {
	BestMatches []struct {
		Symbol   string `json:"1. symbol"`
		Name     string `json:"2. name"`
		Region   string `json:"4. region"`
		Currency string `json:"8. currency"`
	} `json:"bestMatches"`
}

// SearchSymbols returns up to limit symbols matching query. Prices are left at zero.
func (c *Client) SearchSymbols(ctx context.Context, query string, limit int) ([]domain.SymbolMatch, error) {
	var resp symbolSearchResponse
	if err := c.get(ctx, "SYMBOL_SEARCH", url.Values{"keywords": {query}}, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.SymbolMatch, 0, min(limit, len(resp.BestMatches)))
	for _, m := range resp.BestMatches {
		if len(matches) == limit {
			break
		}
		matches = append(matches, domain.SymbolMatch{
			Symbol:      m.Symbol,
			CompanyName: m.Name,
			Region:      m.Region,
			Currency:    m.Currency,
		})
	}

	return matches, nil
}

type dailySeriesResponse struct {
	Series map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

// GetDailyHistory returns the most recent points daily closes, oldest first
func (c *Client) GetDailyHistory(ctx context.Context, symbol string, points int) (*domain.PriceHistory, error) {
	var resp dailySeriesResponse
	if err := c.get(ctx, "TIME_SERIES_DAILY", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Series) == 0 {
		return nil, fmt.Errorf("no daily series for symbol %s", symbol)
	}

	// ISO dates sort lexically
	dates := make([]string, 0, len(resp.Series))
	for date := range resp.Series {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if len(dates) > points {
		dates = dates[len(dates)-points:]
	}

	history := &domain.PriceHistory{
		Symbol: strings.ToUpper(symbol),
		Dates:  dates,
		Prices: make([]float64, len(dates)),
	}
	for i, date := range dates {
		history.Prices[i] = parseFloat(resp.Series[date].Close)
	}

	return history, nil
}

type overviewResponse struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Description          string `json:"Description"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
}

// CompanyOverview returns the fundamentals summary for symbol
func (c *Client) CompanyOverview(ctx context.Context, symbol string) (*domain.CompanyOverview, error) {
	var resp overviewResponse
	if err := c.get(ctx, "OVERVIEW", url.Values{"symbol": {symbol}}, &resp); err != nil {
		return nil, err
	}

	// Unknown symbols come back as an empty object
	if resp.Symbol == "" {
		return nil, fmt.Errorf("no overview for symbol %s", symbol)
	}

	return &domain.CompanyOverview{
		Symbol:      resp.Symbol,
		Name:        resp.Name,
		Sector:      resp.Sector,
		Industry:    resp.Industry,
		MarketCap:   parseFloat(resp.MarketCapitalization),
		PERatio:     parseFloat(resp.PERatio),
		Description: resp.Description,
	}, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var (
	_ domain.QuoteProvider    = (*Client)(nil)
	_ domain.SymbolSearcher   = (*Client)(nil)
	_ domain.HistoryProvider  = (*Client)(nil)
	_ domain.OverviewProvider = (*Client)(nil)
)
