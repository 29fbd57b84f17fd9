package synthetic

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"finai/internal/domain"
)

type topic struct {
	category  string
	headlines []string
}

var newsTopics = []topic{
	{category: "markets", headlines: []string{
		"Market rally continues as tech stocks surge",
		"Investors optimistic as market reaches new highs",
		"Markets close mixed after volatile trading session",
		"Global markets respond to central bank decisions",
		"Market analysis: What to expect this earnings season",
	}},
	{category: "technology", headlines: []string{
		"Tech giants announce new AI partnerships",
		"Semiconductor shortage impacts tech sector",
		"Big Tech faces new regulatory challenges",
		"Cloud computing stocks show strong performance",
		"Tech innovation drives market growth",
	}},
	{category: "economy", headlines: []string{
		"Fed signals potential interest rate changes",
		"Inflation data shows economic pressures",
		"Job market remains strong despite economic concerns",
		"Economic indicators point to continued growth",
		"Treasury yields shift as economic outlook changes",
	}},
	{category: "companies", headlines: []string{
		"Apple unveils new product lineup",
		"Amazon expands into healthcare sector",
		"Tesla production numbers exceed expectations",
		"Microsoft announces strategic acquisition",
		"Google faces antitrust investigation",
	}},
}

// keyword to category, checked in order
var newsKeywords = []struct {
	keyword  string
	category string
}{
	{"apple", "companies"},
	{"microsoft", "companies"},
	{"amazon", "companies"},
	{"google", "companies"},
	{"meta", "companies"},
	{"tesla", "companies"},
	{"market", "markets"},
	{"stock", "markets"},
	{"tech", "technology"},
	{"economy", "economy"},
	{"inflation", "economy"},
	{"interest", "economy"},
}

var newsSources = []string{
	"Bloomberg", "CNBC", "Reuters", "Wall Street Journal", "Financial Times",
	"MarketWatch", "Business Insider", "Yahoo Finance", "Seeking Alpha", "Motley Fool",
}

var newsSentiments = []string{"positive", "neutral", "negative"}

// relevantProbability is the share of articles drawn from query-matching categories
const relevantProbability = 0.7

// LatestNews returns count general market articles
func (g *Generator) LatestNews(count int) []domain.Article {
	return g.articles("", count)
}

// SearchNews returns count articles biased towards query
func (g *Generator) SearchNews(query string, count int) []domain.Article {
	return g.articles(strings.TrimSpace(query), count)
}

func (g *Generator) articles(query string, count int) []domain.Article {
	rng := rngFor("news", query)
	now := g.now()

	relevant := relevantTopics(query)
	symbolLike := looksLikeSymbol(query)

	articles := make([]domain.Article, 0, count)
	for i := 0; i < count; i++ {
		var t topic
		if rng.Float64() < relevantProbability {
			t = pick(rng, relevant)
		} else {
			t = pick(rng, newsTopics)
		}

		headline := pick(rng, t.headlines)
		if symbolLike && rng.Float64() < 0.6 {
			headline = pick(rng, []string{
				fmt.Sprintf("%s shares jump on strong earnings report", query),
				fmt.Sprintf("%s announces new strategic initiative", query),
				fmt.Sprintf("Analysts upgrade %s stock to 'buy'", query),
				fmt.Sprintf("%s faces challenges in quarterly results", query),
				fmt.Sprintf("Investors react to %s's latest announcement", query),
			})
		}

		hoursAgo := rng.IntN(25)
		articles = append(articles, domain.Article{
			Title:       headline,
			Summary:     fmt.Sprintf("Coverage of %s developments: %s.", t.category, headline),
			URL:         fmt.Sprintf("https://example.com/financial-news/%d", i),
			Source:      pick(rng, newsSources),
			PublishedAt: now.Add(-time.Duration(hoursAgo) * time.Hour).Truncate(time.Hour),
			Category:    t.category,
			Sentiment:   pick(rng, newsSentiments),
		})
	}
	return articles
}

// CompanyNews returns three templated articles about symbol
func (g *Generator) CompanyNews(symbol string) []domain.Article {
	symbol = normalizeSymbol(symbol)
	rng := rngFor("company-news", symbol)
	now := g.now()

	templates := []struct {
		title   string
		summary string
		path    string
		source  string
	}{
		{
			title:   "%s Reports Quarterly Earnings Above Expectations",
			summary: "The company reported strong growth in its core business segments.",
			path:    "earnings-report",
			source:  "Business Insider",
		},
		{
			title:   "%s Announces New Product Line",
			summary: "The company is expanding its offerings to capture additional market share.",
			path:    "product-announcement",
			source:  "TechCrunch",
		},
		{
			title:   "Analysts Upgrade %s Stock",
			summary: "Several analysts have raised their price targets following recent developments.",
			path:    "analyst-upgrade",
			source:  "MarketWatch",
		},
	}

	articles := make([]domain.Article, 0, len(templates))
	for _, tpl := range templates {
		daysAgo := rng.IntN(6)
		articles = append(articles, domain.Article{
			Title:       fmt.Sprintf(tpl.title, symbol),
			Summary:     tpl.summary,
			URL:         fmt.Sprintf("https://example.com/%s/%s", strings.ToLower(symbol), tpl.path),
			Source:      tpl.source,
			PublishedAt: now.AddDate(0, 0, -daysAgo).Truncate(time.Hour),
			Category:    "companies",
		})
	}
	return articles
}

func relevantTopics(query string) []topic {
	if query == "" {
		return newsTopics
	}

	q := strings.ToLower(query)
	seen := make(map[string]bool)
	var matched []topic
	for _, kw := range newsKeywords {
		if !strings.Contains(q, kw.keyword) || seen[kw.category] {
			continue
		}
		seen[kw.category] = true
		for _, t := range newsTopics {
			if t.category == kw.category {
				matched = append(matched, t)
			}
		}
	}

	if len(matched) == 0 {
		return newsTopics
	}
	return matched
}

func looksLikeSymbol(query string) bool {
	if query == "" || len(query) > 5 {
		return false
	}
	for _, r := range query {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
