package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"finai/internal/domain"
)

var errProviderDown = errors.New("provider down")

type fakeQuoteProvider struct {
	name  string
	quote *domain.Quote
	err   error

	mu    sync.Mutex
	calls int
}

func (f *fakeQuoteProvider) Name() string { return f.name }

func (f *fakeQuoteProvider) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	q.Symbol = symbol
	return &q, nil
}

func (f *fakeQuoteProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSearcher struct {
	matches []domain.SymbolMatch
	err     error
}

func (f *fakeSearcher) SearchSymbols(ctx context.Context, query string, limit int) ([]domain.SymbolMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.SymbolMatch, len(f.matches))
	copy(out, f.matches)
	return out, nil
}

type fakeHistory struct {
	history *domain.PriceHistory
	err     error
	calls   int
}

func (f *fakeHistory) GetDailyHistory(ctx context.Context, symbol string, points int) (*domain.PriceHistory, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

type memoryCache struct {
	mu        sync.Mutex
	quotes    map[string]*domain.Quote
	histories map[string]*domain.PriceHistory
}

func newMemoryCache() *memoryCache {
	return &memoryCache{quotes: map[string]*domain.Quote{}, histories: map[string]*domain.PriceHistory{}}
}

func (c *memoryCache) GetQuote(ctx context.Context, symbol string) (*domain.Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.quotes[symbol]
	return q, ok
}

func (c *memoryCache) SetQuote(ctx context.Context, q *domain.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[q.Symbol] = q
}

func (c *memoryCache) GetHistory(ctx context.Context, symbol string) (*domain.PriceHistory, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.histories[symbol]
	return h, ok
}

func (c *memoryCache) SetHistory(ctx context.Context, h *domain.PriceHistory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histories[h.Symbol] = h
}

type fakeHoldings struct {
	symbols []string
}

func (f *fakeHoldings) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	return nil, nil
}

func (f *fakeHoldings) ListSymbols(ctx context.Context) ([]string, error) {
	return f.symbols, nil
}

type fakeNewsProvider struct {
	name     string
	articles []domain.Article
	err      error
	calls    int
	query    string
}

func (f *fakeNewsProvider) Name() string { return f.name }

func (f *fakeNewsProvider) LatestNews(ctx context.Context, limit int) ([]domain.Article, error) {
	f.calls++
	return f.articles, f.err
}

func (f *fakeNewsProvider) SearchNews(ctx context.Context, query string, limit int) ([]domain.Article, error) {
	f.calls++
	f.query = query
	return f.articles, f.err
}

type fakeCompanyNews struct {
	articles []domain.Article
	err      error
	from, to time.Time
}

func (f *fakeCompanyNews) Name() string { return "company" }

func (f *fakeCompanyNews) CompanyNews(ctx context.Context, symbol string, from, to time.Time, limit int) ([]domain.Article, error) {
	f.from, f.to = from, to
	return f.articles, f.err
}

type fakeLLM struct {
	name  string
	reply string
	err   error
	calls int
	last  domain.CompletionRequest
}

func (f *fakeLLM) Name() string { return f.name }

func (f *fakeLLM) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

type fakeOverview struct {
	overview *domain.CompanyOverview
	err      error
}

func (f *fakeOverview) CompanyOverview(ctx context.Context, symbol string) (*domain.CompanyOverview, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.overview, nil
}
