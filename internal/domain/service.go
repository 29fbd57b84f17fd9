package domain

import (
	"context"
	"time"
)

// QuoteProvider is a remote source of current quotes
type QuoteProvider interface {
	Name() string
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// SymbolSearcher finds symbols matching free text
type SymbolSearcher interface {
	SearchSymbols(ctx context.Context, query string, limit int) ([]SymbolMatch, error)
}

// HistoryProvider is a remote source of daily closing prices
type HistoryProvider interface {
	GetDailyHistory(ctx context.Context, symbol string, points int) (*PriceHistory, error)
}

// OverviewProvider is a remote source of company fundamentals
type OverviewProvider interface {
	CompanyOverview(ctx context.Context, symbol string) (*CompanyOverview, error)
}

// NewsProvider is a remote source of general market news
type NewsProvider interface {
	Name() string
	LatestNews(ctx context.Context, limit int) ([]Article, error)
	SearchNews(ctx context.Context, query string, limit int) ([]Article, error)
}

// CompanyNewsProvider is a remote source of news about one company
type CompanyNewsProvider interface {
	Name() string
	CompanyNews(ctx context.Context, symbol string, from, to time.Time, limit int) ([]Article, error)
}

// LLMProvider is a remote chat-completion model
type LLMProvider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// QuoteCache stores recently fetched quotes and price histories.
// Lookups report misses with false; writes are best effort.
type QuoteCache interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, bool)
	SetQuote(ctx context.Context, quote *Quote)
	GetHistory(ctx context.Context, symbol string) (*PriceHistory, bool)
	SetHistory(ctx context.Context, history *PriceHistory)
}

// DocumentExtractor converts an uploaded document to plain text
type DocumentExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}
