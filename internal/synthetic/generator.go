// Package synthetic produces deterministic stand-in data for when every remote
// provider is unavailable. Output for a given key is stable within a process,
// and always has the same shape a real provider would return.
package synthetic

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"finai/internal/utils"
)

// Source labels attached to synthetic payloads
const (
	QuoteSource    = "FinAI Synthetic"
	AnalysisSource = "Synthetic Analysis Engine"
)

// Generator builds synthetic quotes, news, analysis and chat replies
type Generator struct {
	now func() time.Time
}

// New creates a Generator using the wall clock
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock creates a Generator with an injected clock
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// rngFor returns a PRNG seeded from the namespaced key
func rngFor(namespace, key string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(namespace))
	h.Write([]byte{0})
	h.Write([]byte(key))
	sum := h.Sum64()
	return rand.New(rand.NewPCG(sum, sum^0x9e3779b97f4a7c15))
}

// seedOf returns a stable non-negative integer for key
func seedOf(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// weighted picks an index by relative weights
func weighted(rng *rand.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (g *Generator) tradingDay() string {
	return utils.LastTradingDay(g.now()).Format(time.DateOnly)
}
