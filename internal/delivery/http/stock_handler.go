package http

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"finai/internal/delivery/http/dto"
	"finai/internal/domain"
	"finai/internal/middleware"
	"finai/internal/resilient"
)

// MarketData is the read-path market service used by StockHandler
type MarketData interface {
	Quote(ctx context.Context, symbol string) (resilient.Result[*domain.Quote], error)
	Search(ctx context.Context, query string) ([]domain.SymbolMatch, error)
	History(ctx context.Context, symbol string) (*domain.PriceHistory, error)
}

// Ledger is the portfolio logic used by StockHandler
type Ledger interface {
	Buy(ctx context.Context, req domain.TradeRequest) (*domain.Transaction, error)
	Sell(ctx context.Context, req domain.TradeRequest) (*domain.Transaction, error)
	ListHoldings(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error)
	Portfolio(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error)
}

// StockHandler handles quotes, the portfolio ledger and price history
type StockHandler struct {
	market  MarketData
	ledger  Ledger
	timeout time.Duration
}

// NewStockHandler creates a new StockHandler. timeout bounds each request.
func NewStockHandler(market MarketData, ledger Ledger, timeout time.Duration) *StockHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StockHandler{
		market:  market,
		ledger:  ledger,
		timeout: timeout,
	}
}

// Quote returns the current quote for a symbol
// GET /api/stocks/quote/:symbol
func (h *StockHandler) Quote(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.market.Quote(ctx, c.Param("symbol"))
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SourcedResponse(c, result)
}

// Search returns symbols matching a query, each with its current price
// GET /api/stocks/search/:query
func (h *StockHandler) Search(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	matches, err := h.market.Search(ctx, c.Param("query"))
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, matches)
}

// History returns up to 30 daily closes ascending by date
// GET /api/stocks/history/:symbol
func (h *StockHandler) History(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	history, err := h.market.History(ctx, c.Param("symbol"))
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, dto.HistoryOutput{Dates: history.Dates, Prices: history.Prices})
}

// Holdings returns the user's holdings
// GET /api/stocks/holdings
func (h *StockHandler) Holdings(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	holdings, err := h.ledger.ListHoldings(ctx, userID)
	if err != nil {
		return ServerErrorResponse(c, err)
	}
	return SuccessResponse(c, holdings)
}

// Transactions returns the user's 20 most recent transactions
// GET /api/stocks/transactions
func (h *StockHandler) Transactions(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	transactions, err := h.ledger.ListTransactions(ctx, userID)
	if err != nil {
		return ServerErrorResponse(c, err)
	}
	return SuccessResponse(c, transactions)
}

// Portfolio returns the user's holdings valued at current quotes
// GET /api/stocks/portfolio
func (h *StockHandler) Portfolio(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	portfolio, err := h.ledger.Portfolio(ctx, userID)
	if err != nil {
		return ServerErrorResponse(c, err)
	}
	return SuccessResponse(c, portfolio)
}

// Buy records a purchase
// POST /api/stocks/buy
func (h *StockHandler) Buy(c echo.Context) error {
	return h.trade(c, domain.TradeBuy)
}

// Sell records a sale
// POST /api/stocks/sell
func (h *StockHandler) Sell(c echo.Context) error {
	return h.trade(c, domain.TradeSell)
}

func (h *StockHandler) trade(c echo.Context, tradeType string) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	var req dto.TradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	order := domain.TradeRequest{
		UserID:   userID,
		Symbol:   req.Symbol,
		Quantity: req.Quantity,
		Price:    req.Price,
	}

	var tx *domain.Transaction
	if tradeType == domain.TradeBuy {
		tx, err = h.ledger.Buy(ctx, order)
	} else {
		tx, err = h.ledger.Sell(ctx, order)
	}
	if err != nil {
		return AppErrorResponse(c, err)
	}

	message := "Stock purchased successfully"
	if tradeType == domain.TradeSell {
		message = "Stock sold successfully"
	}
	return CreatedResponse(c, dto.TradeResponse{Message: message, Transaction: tx})
}
