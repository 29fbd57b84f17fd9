package domain

import (
	"time"

	"github.com/google/uuid"
)

// Holding represents a user's current position in one symbol
type Holding struct {
	ID           uuid.UUID `json:"-"`
	UserID       uuid.UUID `json:"-"`
	Symbol       string    `json:"symbol"`
	Quantity     int64     `json:"quantity"`
	AveragePrice float64   `json:"average_price"`
	LastUpdated  time.Time `json:"last_updated"`
}

// ApplyBuy adds quantity at price and recomputes the weighted-average cost basis
func (h *Holding) ApplyBuy(quantity int64, price float64, at time.Time) {
	newQuantity := h.Quantity + quantity
	h.AveragePrice = (float64(h.Quantity)*h.AveragePrice + float64(quantity)*price) / float64(newQuantity)
	h.Quantity = newQuantity
	h.LastUpdated = at
}

// ApplySell removes quantity. The average price is left unchanged.
func (h *Holding) ApplySell(quantity int64, at time.Time) error {
	if h.Quantity < quantity {
		return ErrInsufficientShares
	}
	h.Quantity -= quantity
	h.LastUpdated = at
	return nil
}

// IsClosed reports whether the holding has no shares left and must be deleted
func (h *Holding) IsClosed() bool {
	return h.Quantity == 0
}

// CostBasis returns the total amount paid for the current quantity
func (h *Holding) CostBasis() float64 {
	return float64(h.Quantity) * h.AveragePrice
}

// PortfolioLine is a holding valued at a current quote
type PortfolioLine struct {
	Symbol        string  `json:"symbol"`
	Quantity      int64   `json:"quantity"`
	AveragePrice  float64 `json:"average_price"`
	CurrentPrice  float64 `json:"current_price"`
	MarketValue   float64 `json:"market_value"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	PriceSource   string  `json:"price_source"`
}

// Portfolio is the valued set of a user's holdings
type Portfolio struct {
	Lines         []PortfolioLine `json:"holdings"`
	TotalCost     float64         `json:"total_cost"`
	TotalValue    float64         `json:"total_value"`
	UnrealizedPnL float64         `json:"unrealized_pnl"`
}
