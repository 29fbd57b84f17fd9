package synthetic

import (
	"fmt"
	"strings"

	"finai/internal/domain"
)

type companyProfile struct {
	name     string
	sector   string
	business string
	products string
}

var companyProfiles = map[string]companyProfile{
	"AAPL": {"Apple Inc.", "Technology", "Consumer electronics, software, and services",
		"iPhone, iPad, Mac, Apple Watch, Services (App Store, Apple Music, iCloud)"},
	"MSFT": {"Microsoft Corporation", "Technology", "Software, cloud computing, and hardware",
		"Windows, Office 365, Azure, Surface devices, Xbox"},
	"GOOGL": {"Alphabet Inc.", "Technology", "Internet services and products",
		"Google Search, YouTube, Android, Google Cloud, Advertising"},
	"AMZN": {"Amazon.com Inc.", "Consumer Cyclical", "E-commerce, cloud computing, and digital streaming",
		"Online marketplace, AWS, Prime Video, Alexa, Kindle"},
	"META": {"Meta Platforms Inc.", "Technology", "Social media and virtual reality",
		"Facebook, Instagram, WhatsApp, Oculus VR"},
	"TSLA": {"Tesla Inc.", "Automotive", "Electric vehicles and clean energy",
		"Model S, Model 3, Model X, Model Y, Powerwall, Solar Roof"},
	"NVDA": {"NVIDIA Corporation", "Technology", "Graphics processing units and artificial intelligence",
		"GPUs, Gaming, Data Center, Professional Visualization, Automotive"},
}

var (
	sentimentLabels = []string{
		domain.SentimentBullish,
		domain.SentimentSomewhatBullish,
		domain.SentimentNeutral,
		domain.SentimentSomewhatBearish,
		domain.SentimentBearish,
	}
	sentimentWeights = []float64{0.2, 0.3, 0.3, 0.1, 0.1}

	fallbackSectors = []string{"Technology", "Healthcare", "Financial Services", "Consumer Goods", "Industrial"}
)

// Analysis returns a templated multi-section write-up for symbol with a weighted sentiment
func (g *Generator) Analysis(symbol string) *domain.Analysis {
	symbol = normalizeSymbol(symbol)
	rng := rngFor("analysis", symbol)

	sentiment := sentimentLabels[weighted(rng, sentimentWeights)]

	profile, ok := companyProfiles[symbol]
	if !ok {
		sector := pick(rng, fallbackSectors)
		profile = companyProfile{
			name:     symbol + " Inc.",
			sector:   sector,
			business: "business operations in the " + sector + " sector",
			products: "various products and services in their industry",
		}
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# %s (%s) Analysis\n\n", profile.name, symbol)
	fmt.Fprintf(&b, "%s operates in the %s sector, focusing on %s. ", profile.name, profile.sector, profile.business)
	fmt.Fprintf(&b, "Their main products and services include %s.", profile.products)

	b.WriteString("\n\n## Recent Performance\n\nBased on available data, ")
	b.WriteString(pick(rng, []string{
		symbol + " has shown strong performance in recent quarters, with revenue growth exceeding market expectations.",
		symbol + " has been performing in line with sector averages, with stable revenue and earnings.",
		symbol + " has faced some challenges recently, though there are signs of potential stabilization.",
		symbol + " has demonstrated mixed results, with strength in some areas offset by weaknesses in others.",
	}))

	b.WriteString("\n\n## Technical Analysis\n\n")
	b.WriteString(pick(rng, []string{
		"The stock is trading above its 50-day and 200-day moving averages, suggesting positive momentum.",
		"The stock is currently trading near its support level, which could present an entry point if it holds.",
		"Recent price action shows consolidation after a period of volatility, suggesting indecision in the market.",
		"The relative strength index (RSI) indicates " + symbol + " may be approaching overbought or oversold territory.",
	}))

	b.WriteString("\n\n## Fundamental Analysis\n\n")
	b.WriteString(pick(rng, []string{
		"The company maintains a strong balance sheet with substantial cash reserves and manageable debt levels.",
		"Valuation metrics suggest " + symbol + " is trading at a premium or discount compared to industry peers.",
		"Recent earnings reports show improving profit margins and operational efficiency.",
		"The company's price-to-earnings ratio is in line with historical averages, suggesting fair valuation.",
	}))

	b.WriteString("\n\n## Industry Context\n\n")
	b.WriteString(pick(rng, []string{
		profile.name + " holds a dominant position in their market segment, with strong competitive advantages.",
		"The company faces intense competition but maintains differentiation through innovation and quality.",
		"Industry trends appear favorable for " + profile.name + "'s long-term growth strategy.",
		"Regulatory and market changes present both challenges and opportunities for " + profile.name + ".",
	}))

	b.WriteString("\n\n## Risks and Opportunities\n\n**Risks:**\n- ")
	b.WriteString(pick(rng, []string{
		"Increasing competition in core markets",
		"Potential regulatory challenges",
		"Macroeconomic uncertainties affecting consumer spending",
		"Supply chain disruptions affecting production capacity",
	}))
	b.WriteString("\n- ")
	b.WriteString(pick(rng, []string{
		"Margin pressure due to rising costs",
		"Technology shifts requiring significant R&D investment",
		"Dependence on specific markets or products",
		"Currency fluctuations affecting international operations",
	}))
	b.WriteString("\n\n**Opportunities:**\n- ")
	b.WriteString(pick(rng, []string{
		"Expansion into new geographic markets",
		"Product diversification potential",
		"Strategic acquisitions to enhance capabilities",
		"Growing demand in emerging market segments",
	}))
	b.WriteString("\n- ")
	b.WriteString(pick(rng, []string{
		"Innovation pipeline showing promise",
		"Cost optimization initiatives underway",
		"Strong brand value providing pricing power",
		"Digital transformation creating new revenue streams",
	}))

	fmt.Fprintf(&b, "\n\n## Overall Outlook: %s\n\n", sentiment)
	b.WriteString(pick(rng, []string{
		"The overall outlook for " + symbol + " appears positive, with growth potential outweighing identified risks.",
		"The outlook for " + symbol + " is cautiously optimistic, with several positive catalysts balanced by notable challenges.",
		"The outlook for " + symbol + " suggests a neutral position is warranted, with both positive and negative factors at play.",
		"There are concerns about " + symbol + "'s near-term prospects, though long-term fundamentals remain intact.",
	}))

	b.WriteString("\n\n## Disclaimer\n\n")
	b.WriteString("This analysis is generated automatically and is for educational purposes only. ")
	b.WriteString("It does not constitute financial advice. ")
	b.WriteString("Always conduct your own research or consult a financial advisor before making investment decisions.")

	return &domain.Analysis{
		Symbol:      symbol,
		Analysis:    b.String(),
		Sentiment:   sentiment,
		GeneratedAt: g.now(),
		Source:      AnalysisSource,
	}
}
