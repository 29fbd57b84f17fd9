package synthetic

import (
	"math"

	"finai/internal/domain"
)

type knownStock struct {
	price  float64
	change float64
	name   string
	volume int64
}

var popularStocks = map[string]knownStock{
	"AAPL":  {price: 175.64, change: 2.32, name: "Apple Inc.", volume: 78523641},
	"MSFT":  {price: 380.32, change: 4.21, name: "Microsoft Corporation", volume: 32458726},
	"GOOGL": {price: 142.93, change: 1.56, name: "Alphabet Inc.", volume: 25843197},
	"AMZN":  {price: 169.45, change: -0.87, name: "Amazon.com Inc.", volume: 41236548},
	"META":  {price: 458.32, change: 5.43, name: "Meta Platforms Inc.", volume: 19876543},
	"TSLA":  {price: 193.57, change: -2.31, name: "Tesla Inc.", volume: 57234891},
	"NVDA":  {price: 788.14, change: 12.47, name: "NVIDIA Corporation", volume: 45213698},
}

// Quote returns a plausible quote for symbol. Well-known symbols come from a
// curated table; others are derived from a hash of the symbol.
func (g *Generator) Quote(symbol string) *domain.Quote {
	symbol = normalizeSymbol(symbol)

	stock, ok := popularStocks[symbol]
	if !ok {
		rng := rngFor("quote", symbol)
		stock = knownStock{
			price:  float64(100 + seedOf(symbol)%900),
			change: round2(rng.Float64()*10 - 5),
			name:   symbol + " Inc.",
			volume: 100000 + rng.Int64N(9900001),
		}
	}

	return &domain.Quote{
		Symbol:           symbol,
		Name:             stock.name,
		Price:            stock.price,
		Change:           stock.change,
		ChangePercent:    round2(stock.change / stock.price * 100),
		Volume:           stock.volume,
		High:             round2(stock.price + math.Abs(stock.change)*1.1),
		Low:              round2(stock.price - math.Abs(stock.change)*0.9),
		MarketCap:        stock.price * float64(stock.volume),
		LatestTradingDay: g.tradingDay(),
		Source:           QuoteSource,
	}
}

// CompanyName returns the display name for symbol
func CompanyName(symbol string) string {
	symbol = normalizeSymbol(symbol)
	if stock, ok := popularStocks[symbol]; ok {
		return stock.name
	}
	return symbol + " Inc."
}
