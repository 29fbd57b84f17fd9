package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"finai/internal/domain"
	"finai/internal/logger"
	"finai/internal/resilient"
	"finai/internal/synthetic"
)

const (
	// NewsLimit caps latest and search results
	NewsLimit = 10
	// CompanyNewsLimit caps company news results
	CompanyNewsLimit = 20
	// CompanyNewsWindow is how far back company news is fetched
	CompanyNewsWindow = 7 * 24 * time.Hour
)

// NewsConfig wires the providers behind NewsService
type NewsConfig struct {
	Providers        []domain.NewsProvider
	CompanyProviders []domain.CompanyNewsProvider
	Generator        *synthetic.Generator
	Timeout          time.Duration
	Observer         resilient.Observer
	Logger           *logger.Logger
	Now              func() time.Time
}

// NewsService serves market news, always returning a list
type NewsService struct {
	latest  *resilient.Fetcher[int, []domain.Article]
	search  *resilient.Fetcher[string, []domain.Article]
	company *resilient.Fetcher[string, []domain.Article]
}

// NewNewsService creates a new NewsService
func NewNewsService(cfg NewsConfig) *NewsService {
	gen := cfg.Generator
	if gen == nil {
		gen = synthetic.New()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	var latest []resilient.Provider[int, []domain.Article]
	var search []resilient.Provider[string, []domain.Article]
	for _, p := range cfg.Providers {
		latest = append(latest, resilient.Provider[int, []domain.Article]{
			Name: p.Name(),
			Fetch: func(ctx context.Context, limit int) ([]domain.Article, error) {
				articles, err := p.LatestNews(ctx, limit)
				return truncate(articles, limit), err
			},
		})
		search = append(search, resilient.Provider[string, []domain.Article]{
			Name: p.Name(),
			Fetch: func(ctx context.Context, query string) ([]domain.Article, error) {
				articles, err := p.SearchNews(ctx, query, NewsLimit)
				return truncate(articles, NewsLimit), err
			},
		})
	}

	var company []resilient.Provider[string, []domain.Article]
	for _, p := range cfg.CompanyProviders {
		company = append(company, resilient.Provider[string, []domain.Article]{
			Name: p.Name(),
			Fetch: func(ctx context.Context, symbol string) ([]domain.Article, error) {
				to := now()
				articles, err := p.CompanyNews(ctx, symbol, to.Add(-CompanyNewsWindow), to, CompanyNewsLimit)
				return truncate(articles, CompanyNewsLimit), err
			},
		})
	}

	return &NewsService{
		latest: resilient.New(resilient.Config[int, []domain.Article]{
			Kind:      "news",
			Providers: latest,
			Validate:  validateArticles,
			Fallback:  gen.LatestNews,
			Timeout:   cfg.Timeout,
			Logger:    cfg.Logger,
			Observer:  cfg.Observer,
		}),
		search: resilient.New(resilient.Config[string, []domain.Article]{
			Kind:      "news_search",
			Providers: search,
			Validate:  validateArticles,
			Fallback: func(query string) []domain.Article {
				return gen.SearchNews(query, NewsLimit)
			},
			Timeout:  cfg.Timeout,
			Logger:   cfg.Logger,
			Observer: cfg.Observer,
		}),
		company: resilient.New(resilient.Config[string, []domain.Article]{
			Kind:      "company_news",
			Providers: company,
			Validate:  validateArticles,
			Fallback:  gen.CompanyNews,
			Timeout:   cfg.Timeout,
			Logger:    cfg.Logger,
			Observer:  cfg.Observer,
		}),
	}
}

// Latest returns the latest market headlines
func (s *NewsService) Latest(ctx context.Context) resilient.Result[[]domain.Article] {
	result, _ := s.latest.Fetch(ctx, NewsLimit)
	return result
}

// Search returns articles matching query
func (s *NewsService) Search(ctx context.Context, query string) (resilient.Result[[]domain.Article], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return resilient.Result[[]domain.Article]{}, domain.NewValidationError("Search query is required")
	}
	result, _ := s.search.Fetch(ctx, query)
	return result, nil
}

// Company returns recent articles about symbol
func (s *NewsService) Company(ctx context.Context, symbol string) (resilient.Result[[]domain.Article], error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return resilient.Result[[]domain.Article]{}, domain.NewValidationError("Symbol is required")
	}
	result, _ := s.company.Fetch(ctx, symbol)
	return result, nil
}

func validateArticles(articles []domain.Article) error {
	if len(articles) == 0 {
		return errors.New("no articles")
	}
	return nil
}

func truncate(articles []domain.Article, limit int) []domain.Article {
	if len(articles) > limit {
		return articles[:limit]
	}
	return articles
}
