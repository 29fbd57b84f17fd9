package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finai/internal/domain"
	"finai/internal/resilient"
)

func articles(n int) []domain.Article {
	out := make([]domain.Article, n)
	for i := range out {
		out[i] = domain.Article{Title: fmt.Sprintf("headline %d", i), URL: fmt.Sprintf("https://n/%d", i)}
	}
	return out
}

func TestLatest_StopsAtFirstProvider(t *testing.T) {
	first := &fakeNewsProvider{name: "first", articles: articles(3)}
	second := &fakeNewsProvider{name: "second", articles: articles(1)}

	svc := NewNewsService(NewsConfig{Providers: []domain.NewsProvider{first, second}})

	result := svc.Latest(context.Background())
	assert.Equal(t, resilient.SourceReal, result.Source)
	assert.Equal(t, "first", result.Provider)
	assert.Len(t, result.Data, 3)
	assert.Equal(t, 0, second.calls)
}

func TestLatest_TruncatesToLimit(t *testing.T) {
	provider := &fakeNewsProvider{name: "p", articles: articles(25)}

	svc := NewNewsService(NewsConfig{Providers: []domain.NewsProvider{provider}})

	result := svc.Latest(context.Background())
	assert.Len(t, result.Data, NewsLimit)
}

func TestLatest_EmptyListFallsBack(t *testing.T) {
	empty := &fakeNewsProvider{name: "empty"}
	failing := &fakeNewsProvider{name: "failing", err: errProviderDown}

	svc := NewNewsService(NewsConfig{
		Providers: []domain.NewsProvider{empty, failing},
		Generator: fixedGenerator(),
	})

	result := svc.Latest(context.Background())
	assert.True(t, result.Degraded())
	assert.Len(t, result.Data, NewsLimit)
	assert.Equal(t, 1, failing.calls)
}

func TestSearch_PassesQueryAndValidates(t *testing.T) {
	provider := &fakeNewsProvider{name: "p", articles: articles(2)}
	svc := NewNewsService(NewsConfig{Providers: []domain.NewsProvider{provider}})

	result, err := svc.Search(context.Background(), "  inflation ")
	require.NoError(t, err)
	assert.Equal(t, "inflation", provider.query)
	assert.Len(t, result.Data, 2)

	_, err = svc.Search(context.Background(), "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestSearch_NoProvidersIsSynthetic(t *testing.T) {
	svc := NewNewsService(NewsConfig{Generator: fixedGenerator()})

	result, err := svc.Search(context.Background(), "tesla")
	require.NoError(t, err)
	assert.True(t, result.Degraded())
	assert.NotEmpty(t, result.Data)
}

func TestCompany_UsesSevenDayWindow(t *testing.T) {
	now := time.Date(2024, 3, 28, 12, 0, 0, 0, time.UTC)
	provider := &fakeCompanyNews{articles: articles(30)}

	svc := NewNewsService(NewsConfig{
		CompanyProviders: []domain.CompanyNewsProvider{provider},
		Now:              func() time.Time { return now },
	})

	result, err := svc.Company(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Len(t, result.Data, CompanyNewsLimit)
	assert.Equal(t, now, provider.to)
	assert.Equal(t, now.Add(-7*24*time.Hour), provider.from)
}

func TestCompany_FailureFallsBackToSynthetic(t *testing.T) {
	svc := NewNewsService(NewsConfig{
		CompanyProviders: []domain.CompanyNewsProvider{&fakeCompanyNews{err: errProviderDown}},
		Generator:        fixedGenerator(),
	})

	result, err := svc.Company(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, result.Degraded())
	assert.Len(t, result.Data, 3)
}
