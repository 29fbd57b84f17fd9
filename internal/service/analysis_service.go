package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finai/internal/domain"
	"finai/internal/logger"
	"finai/internal/resilient"
	"finai/internal/synthetic"
)

// AnalysisMaxTokens bounds analysis replies
const AnalysisMaxTokens = 2000

// QuoteSource provides current quotes for prompt building
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (resilient.Result[*domain.Quote], error)
}

// AnalysisService produces stock write-ups through the LLM chain, falling back to synthetic analysis
type AnalysisService struct {
	quotes    QuoteSource
	overviews domain.OverviewProvider
	analyses  *resilient.Fetcher[analysisRequest, *domain.Analysis]
	now       func() time.Time
	logger    *logger.Logger
}

type analysisRequest struct {
	symbol     string
	completion domain.CompletionRequest
}

// NewAnalysisService creates a new AnalysisService. quotes and overviews may be nil.
func NewAnalysisService(llms []domain.LLMProvider, quotes QuoteSource, overviews domain.OverviewProvider, gen *synthetic.Generator, timeout time.Duration, observer resilient.Observer, log *logger.Logger) *AnalysisService {
	if gen == nil {
		gen = synthetic.New()
	}
	if log == nil {
		log = logger.NewSilent()
	}

	s := &AnalysisService{quotes: quotes, overviews: overviews, now: time.Now, logger: log}

	providers := make([]resilient.Provider[analysisRequest, *domain.Analysis], 0, len(llms))
	for _, llm := range llms {
		providers = append(providers, resilient.Provider[analysisRequest, *domain.Analysis]{
			Name: llm.Name(),
			Fetch: func(ctx context.Context, req analysisRequest) (*domain.Analysis, error) {
				text, err := llm.Complete(ctx, req.completion)
				if err != nil {
					return nil, err
				}
				return &domain.Analysis{
					Symbol:      req.symbol,
					Analysis:    text,
					Sentiment:   DetectSentiment(text),
					GeneratedAt: s.now(),
					Source:      llm.Name() + " LLM Analysis",
				}, nil
			},
		})
	}

	s.analyses = resilient.New(resilient.Config[analysisRequest, *domain.Analysis]{
		Kind:      "analysis",
		Providers: providers,
		Validate: func(a *domain.Analysis) error {
			if a == nil {
				return fmt.Errorf("empty analysis")
			}
			return validateCompletion(a.Analysis)
		},
		Fallback: func(req analysisRequest) *domain.Analysis {
			return gen.Analysis(req.symbol)
		},
		Timeout:  timeout,
		Logger:   log,
		Observer: observer,
	})

	return s
}

// Analyze returns an analysis of symbol. Provider failures degrade to synthetic analysis.
func (s *AnalysisService) Analyze(ctx context.Context, symbol string) (resilient.Result[*domain.Analysis], error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return resilient.Result[*domain.Analysis]{}, domain.NewValidationError("No symbol provided")
	}

	req := analysisRequest{
		symbol: symbol,
		completion: domain.CompletionRequest{
			System:    AnalysisSystemPrompt(symbol, s.promptData(ctx, symbol)),
			Prompt:    fmt.Sprintf("Please provide a comprehensive analysis of %s stock.", symbol),
			MaxTokens: AnalysisMaxTokens,
		},
	}

	result, _ := s.analyses.Fetch(ctx, req)
	return result, nil
}

// promptData joins whatever overview and quote facts are available for symbol
func (s *AnalysisService) promptData(ctx context.Context, symbol string) string {
	var parts []string
	if overview := s.overviewData(ctx, symbol); overview != "" {
		parts = append(parts, overview)
	}
	if quote := s.quoteData(ctx, symbol); quote != "" {
		parts = append(parts, quote)
	}
	return strings.Join(parts, "; ")
}

// overviewData describes company fundamentals, or returns "" when the provider is missing or fails
func (s *AnalysisService) overviewData(ctx context.Context, symbol string) string {
	if s.overviews == nil {
		return ""
	}
	o, err := s.overviews.CompanyOverview(ctx, symbol)
	if err != nil || o == nil {
		s.logger.Debug().Err(err).Str("symbol", symbol).Msg("company overview unavailable")
		return ""
	}

	var facts []string
	if o.Name != "" {
		facts = append(facts, "company "+o.Name)
	}
	if o.Sector != "" {
		facts = append(facts, "sector "+o.Sector)
	}
	if o.Industry != "" {
		facts = append(facts, "industry "+o.Industry)
	}
	if o.MarketCap > 0 {
		facts = append(facts, fmt.Sprintf("market cap $%.0f", o.MarketCap))
	}
	if o.PERatio > 0 {
		facts = append(facts, fmt.Sprintf("P/E %.2f", o.PERatio))
	}
	if o.Description != "" {
		facts = append(facts, "business: "+o.Description)
	}
	return strings.Join(facts, ", ")
}

// quoteData describes the current real quote, or returns "" when only synthetic data is available
func (s *AnalysisService) quoteData(ctx context.Context, symbol string) string {
	if s.quotes == nil {
		return ""
	}
	result, err := s.quotes.Quote(ctx, symbol)
	if err != nil || result.Degraded() {
		return ""
	}

	q := result.Data
	return fmt.Sprintf("price $%.2f, change %.2f (%.2f%%), day range $%.2f-$%.2f, volume %d, as of %s",
		q.Price, q.Change, q.ChangePercent, q.Low, q.High, q.Volume, q.LatestTradingDay)
}

// AnalysisSystemPrompt builds the analyst instructions for symbol
func AnalysisSystemPrompt(symbol, data string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are FinAI's stock analysis expert. Analyze the stock %s based on available data.\n\n", symbol)
	sb.WriteString(`Provide a comprehensive analysis including:
1. Overview of the company and its business model
2. Recent performance and key metrics
3. Technical analysis (if applicable)
4. Fundamental analysis (if applicable)
5. Industry context and competitive positioning
6. Potential risks and opportunities
7. General outlook (bullish, neutral, or bearish)

Important guidelines:
- Make it clear you are providing educational analysis, not financial advice
- Present a balanced view that covers both bullish and bearish perspectives
- Do not make specific price predictions or guarantees
- Acknowledge limitations in your analysis based on available data
- Focus on facts and objective analysis
- Use standard financial terminology and explain complex concepts

`)
	if data != "" {
		fmt.Fprintf(&sb, "Here is the available data for %s: %s\n\n", symbol, data)
	}
	sb.WriteString("Provide your analysis in a clear, structured format that would be helpful for an investor wanting to understand this stock better.")
	return sb.String()
}

// DetectSentiment labels text Bullish or Bearish by keyword, Neutral otherwise.
// Bullish wins when both appear.
func DetectSentiment(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "bullish"):
		return domain.SentimentBullish
	case strings.Contains(lower, "bearish"):
		return domain.SentimentBearish
	default:
		return domain.SentimentNeutral
	}
}
