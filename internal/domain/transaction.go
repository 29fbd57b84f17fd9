package domain

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is an immutable ledger entry recorded for every trade
type Transaction struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Symbol    string    `json:"symbol"`
	Type      string    `json:"transaction_type"`
	Quantity  int64     `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"timestamp"`
}

// TradeType constants
const (
	TradeBuy  = "BUY"
	TradeSell = "SELL"
)

// RecentTransactionsLimit is how many entries the transaction log listing returns
const RecentTransactionsLimit = 20

// TradeRequest is a validated buy or sell order
type TradeRequest struct {
	UserID   uuid.UUID
	Symbol   string
	Quantity int64
	Price    float64
}
