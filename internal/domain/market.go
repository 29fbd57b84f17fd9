package domain

import "time"

// Quote is the canonical quote shape returned whatever source produced it
type Quote struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name,omitempty"`
	Price            float64 `json:"price"`
	Change           float64 `json:"change"`
	ChangePercent    float64 `json:"change_percent"`
	Volume           int64   `json:"volume"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	MarketCap        float64 `json:"market_cap,omitempty"`
	LatestTradingDay string  `json:"latest_trading_day"`
	Source           string  `json:"source"`
}

// SymbolMatch is one symbol search hit with its current price
type SymbolMatch struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"company_name"`
	Region        string  `json:"region"`
	Currency      string  `json:"currency"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// CompanyOverview is the fundamentals summary of a listed company
type CompanyOverview struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	MarketCap   float64 `json:"market_cap"`
	PERatio     float64 `json:"pe_ratio"`
	Description string  `json:"description"`
}

// PriceHistory holds daily closing prices ascending by date
type PriceHistory struct {
	Symbol string    `json:"symbol"`
	Dates  []string  `json:"dates"`
	Prices []float64 `json:"prices"`
}

// HistoryPoints is the number of daily points returned by price history
const HistoryPoints = 30

// Article is the canonical news item shape
type Article struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category,omitempty"`
	Sentiment   string    `json:"sentiment,omitempty"`
}

// Analysis is an AI-generated stock write-up
type Analysis struct {
	Symbol      string    `json:"symbol"`
	Analysis    string    `json:"analysis"`
	Sentiment   string    `json:"sentiment"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`
}

// Sentiment labels
const (
	SentimentBullish         = "Bullish"
	SentimentSomewhatBullish = "Somewhat Bullish"
	SentimentNeutral         = "Neutral"
	SentimentSomewhatBearish = "Somewhat Bearish"
	SentimentBearish         = "Bearish"
)

// CompletionRequest is a single-turn LLM request
type CompletionRequest struct {
	System    string
	Context   string
	Prompt    string
	MaxTokens int
}
