package dto

import "finai/internal/domain"

// TradeRequest represents a buy or sell payload
type TradeRequest struct {
	Symbol   string  `json:"symbol"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// TradeResponse is returned after a recorded trade
type TradeResponse struct {
	Message     string              `json:"message"`
	Transaction *domain.Transaction `json:"transaction"`
}

// HistoryOutput is the price history payload
type HistoryOutput struct {
	Dates  []string  `json:"dates"`
	Prices []float64 `json:"prices"`
}
