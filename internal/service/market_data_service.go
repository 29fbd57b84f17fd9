package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"finai/internal/cache"
	"finai/internal/domain"
	"finai/internal/logger"
	"finai/internal/resilient"
	"finai/internal/synthetic"
)

// SearchLimit is the maximum number of symbol matches returned by Search
const SearchLimit = 10

// MarketDataConfig wires the providers behind MarketDataService.
// Nil providers are skipped.
type MarketDataConfig struct {
	QuoteProviders []domain.QuoteProvider
	Searcher       domain.SymbolSearcher
	History        domain.HistoryProvider
	Cache          domain.QuoteCache
	Holdings       domain.HoldingRepository
	Generator      *synthetic.Generator
	Timeout        time.Duration
	Observer       resilient.Observer
	Logger         *logger.Logger
}

// MarketDataService serves quotes, symbol search and price history
type MarketDataService struct {
	quotes   *resilient.Fetcher[string, *domain.Quote]
	search   *resilient.Fetcher[string, []domain.SymbolMatch]
	history  *resilient.Fetcher[string, *domain.PriceHistory]
	cache    domain.QuoteCache
	holdings domain.HoldingRepository
	logger   *logger.Logger
}

// NewMarketDataService creates a new MarketDataService
func NewMarketDataService(cfg MarketDataConfig) *MarketDataService {
	log := cfg.Logger
	if log == nil {
		log = logger.NewSilent()
	}
	gen := cfg.Generator
	if gen == nil {
		gen = synthetic.New()
	}
	quoteCache := cfg.Cache
	if quoteCache == nil {
		quoteCache = cache.NoopCache{}
	}

	quoteProviders := make([]resilient.Provider[string, *domain.Quote], 0, len(cfg.QuoteProviders))
	for _, p := range cfg.QuoteProviders {
		quoteProviders = append(quoteProviders, resilient.Provider[string, *domain.Quote]{
			Name:  p.Name(),
			Fetch: p.GetQuote,
		})
	}

	var searchProviders []resilient.Provider[string, []domain.SymbolMatch]
	if cfg.Searcher != nil {
		searchProviders = append(searchProviders, resilient.Provider[string, []domain.SymbolMatch]{
			Name: "symbol-search",
			Fetch: func(ctx context.Context, query string) ([]domain.SymbolMatch, error) {
				return cfg.Searcher.SearchSymbols(ctx, query, SearchLimit)
			},
		})
	}

	var historyProviders []resilient.Provider[string, *domain.PriceHistory]
	if cfg.History != nil {
		historyProviders = append(historyProviders, resilient.Provider[string, *domain.PriceHistory]{
			Name: "daily-history",
			Fetch: func(ctx context.Context, symbol string) (*domain.PriceHistory, error) {
				return cfg.History.GetDailyHistory(ctx, symbol, domain.HistoryPoints)
			},
		})
	}

	return &MarketDataService{
		quotes: resilient.New(resilient.Config[string, *domain.Quote]{
			Kind:      "quote",
			Providers: quoteProviders,
			Validate:  validateQuote,
			Fallback:  gen.Quote,
			Timeout:   cfg.Timeout,
			Logger:    log,
			Observer:  cfg.Observer,
		}),
		search: resilient.New(resilient.Config[string, []domain.SymbolMatch]{
			Kind:      "search",
			Providers: searchProviders,
			Validate:  validateMatches,
			Timeout:   cfg.Timeout,
			Logger:    log,
			Observer:  cfg.Observer,
		}),
		history: resilient.New(resilient.Config[string, *domain.PriceHistory]{
			Kind:      "history",
			Providers: historyProviders,
			Validate:  validateHistory,
			Timeout:   cfg.Timeout,
			Logger:    log,
			Observer:  cfg.Observer,
		}),
		cache:    quoteCache,
		holdings: cfg.Holdings,
		logger:   log,
	}
}

// NormalizeSymbol trims and upper-cases a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Quote returns the current quote for symbol. It never fails because of providers:
// when all of them fail a synthetic quote is returned.
func (s *MarketDataService) Quote(ctx context.Context, symbol string) (resilient.Result[*domain.Quote], error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return resilient.Result[*domain.Quote]{}, domain.NewValidationError("Symbol is required")
	}

	if q, ok := s.cache.GetQuote(ctx, symbol); ok {
		return resilient.Result[*domain.Quote]{Data: q, Source: resilient.SourceReal, Provider: q.Source}, nil
	}

	return s.fetchQuote(ctx, symbol)
}

func (s *MarketDataService) fetchQuote(ctx context.Context, symbol string) (resilient.Result[*domain.Quote], error) {
	result, err := s.quotes.Fetch(ctx, symbol)
	if err != nil {
		return result, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if !result.Degraded() {
		s.cache.SetQuote(ctx, result.Data)
	}
	return result, nil
}

// Search finds up to SearchLimit symbols matching query, each priced with its current quote
func (s *MarketDataService) Search(ctx context.Context, query string) ([]domain.SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("Search query is required")
	}

	result, err := s.search.Fetch(ctx, query)
	if err != nil {
		s.logger.Info().Str("query", query).Err(err).Msg("symbol search returned nothing")
		return nil, domain.NewNotFoundError("No matching stocks found")
	}

	matches := result.Data
	var wg sync.WaitGroup
	for i := range matches {
		wg.Add(1)
		go func(m *domain.SymbolMatch) {
			defer wg.Done()
			// Synthetic prices never decorate real matches
			quote, err := s.Quote(ctx, m.Symbol)
			if err != nil || quote.Degraded() {
				return
			}
			m.Price = quote.Data.Price
			m.Change = quote.Data.Change
			m.ChangePercent = quote.Data.ChangePercent
		}(&matches[i])
	}
	wg.Wait()

	return matches, nil
}

// History returns up to domain.HistoryPoints daily closes for symbol, oldest first
func (s *MarketDataService) History(ctx context.Context, symbol string) (*domain.PriceHistory, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, domain.NewValidationError("Symbol is required")
	}

	if h, ok := s.cache.GetHistory(ctx, symbol); ok {
		return h, nil
	}

	result, err := s.history.Fetch(ctx, symbol)
	if err != nil {
		s.logger.Info().Str("symbol", symbol).Err(err).Msg("price history unavailable")
		return nil, domain.NewNotFoundError("Historical data not available")
	}

	s.cache.SetHistory(ctx, result.Data)
	return result.Data, nil
}

// WarmQuotes refreshes the cached quote of every held symbol and returns how many were refreshed
func (s *MarketDataService) WarmQuotes(ctx context.Context) (int, error) {
	if s.holdings == nil {
		return 0, nil
	}

	symbols, err := s.holdings.ListSymbols(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list held symbols: %w", err)
	}

	refreshed := 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		result, err := s.fetchQuote(ctx, symbol)
		if err != nil {
			return refreshed, err
		}
		if !result.Degraded() {
			refreshed++
		}
	}

	s.logger.Debug().Int("symbols", len(symbols)).Int("refreshed", refreshed).Msg("quote cache warmed")
	return refreshed, nil
}

func validateQuote(q *domain.Quote) error {
	if q == nil {
		return errors.New("empty quote")
	}
	if q.Price <= 0 {
		return fmt.Errorf("invalid price %.4f", q.Price)
	}
	return nil
}

func validateMatches(matches []domain.SymbolMatch) error {
	if len(matches) == 0 {
		return errors.New("no matches")
	}
	return nil
}

func validateHistory(h *domain.PriceHistory) error {
	if h == nil || len(h.Dates) == 0 {
		return errors.New("empty history")
	}
	if len(h.Dates) != len(h.Prices) {
		return fmt.Errorf("history has %d dates but %d prices", len(h.Dates), len(h.Prices))
	}
	return nil
}
