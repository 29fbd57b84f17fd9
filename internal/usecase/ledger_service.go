package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"finai/internal/domain"
	"finai/internal/logger"
	"finai/internal/service"
)

// maxTradeAttempts bounds retries after a concurrent first buy of the same symbol
const maxTradeAttempts = 3

// TradeObserver receives ledger outcomes
type TradeObserver interface {
	ObserveTrade(tradeType, outcome string)
}

// LedgerService handles buys, sells and the transaction log
type LedgerService struct {
	store        domain.LedgerStore
	holdings     domain.HoldingRepository
	transactions domain.TransactionRepository
	quotes       service.QuoteSource
	observer     TradeObserver
	now          func() time.Time
	logger       *logger.Logger
}

// NewLedgerService creates a new LedgerService. quotes and observer may be nil.
func NewLedgerService(
	store domain.LedgerStore,
	holdings domain.HoldingRepository,
	transactions domain.TransactionRepository,
	quotes service.QuoteSource,
	observer TradeObserver,
	log *logger.Logger,
) *LedgerService {
	if log == nil {
		log = logger.NewSilent()
	}
	return &LedgerService{
		store:        store,
		holdings:     holdings,
		transactions: transactions,
		quotes:       quotes,
		observer:     observer,
		now:          time.Now,
		logger:       log,
	}
}

// Buy adds quantity at price to the user's holding, recomputing the weighted-average cost
func (s *LedgerService) Buy(ctx context.Context, req domain.TradeRequest) (*domain.Transaction, error) {
	return s.trade(ctx, domain.TradeBuy, req)
}

// Sell removes quantity from the user's holding. The holding is deleted when it reaches zero.
func (s *LedgerService) Sell(ctx context.Context, req domain.TradeRequest) (*domain.Transaction, error) {
	return s.trade(ctx, domain.TradeSell, req)
}

func (s *LedgerService) trade(ctx context.Context, tradeType string, req domain.TradeRequest) (*domain.Transaction, error) {
	req.Symbol = service.NormalizeSymbol(req.Symbol)
	if err := validateTrade(req); err != nil {
		s.observe(tradeType, "rejected")
		return nil, err
	}

	var (
		tx  *domain.Transaction
		err error
	)
	for attempt := 1; attempt <= maxTradeAttempts; attempt++ {
		tx, err = s.tradeOnce(ctx, tradeType, req)
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			break
		}
		s.logger.Debug().
			Str("symbol", req.Symbol).
			Int("attempt", attempt).
			Msg("concurrent holding insert, retrying trade")
	}

	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindInsufficientShares:
			s.observe(tradeType, "insufficient_shares")
			return nil, err
		default:
			s.observe(tradeType, "failed")
			s.logger.Error().
				Err(err).
				Str("type", tradeType).
				Str("symbol", req.Symbol).
				Str("user_id", req.UserID.String()).
				Msg("trade transaction failed")
			return nil, domain.NewPersistenceError("Transaction failed", err)
		}
	}

	s.observe(tradeType, "ok")
	s.logger.Info().
		Str("type", tradeType).
		Str("symbol", req.Symbol).
		Int64("quantity", req.Quantity).
		Float64("price", req.Price).
		Str("user_id", req.UserID.String()).
		Msg("trade recorded")
	return tx, nil
}

func (s *LedgerService) tradeOnce(ctx context.Context, tradeType string, req domain.TradeRequest) (*domain.Transaction, error) {
	now := s.now().UTC()
	record := &domain.Transaction{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Symbol:    req.Symbol,
		Type:      tradeType,
		Quantity:  req.Quantity,
		Price:     req.Price,
		CreatedAt: now,
	}

	err := s.store.WithinTx(ctx, func(tx domain.LedgerTx) error {
		holding, err := tx.LockHolding(ctx, req.UserID, req.Symbol)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		switch tradeType {
		case domain.TradeBuy:
			if holding == nil {
				holding = &domain.Holding{ID: uuid.New(), UserID: req.UserID, Symbol: req.Symbol}
				holding.ApplyBuy(req.Quantity, req.Price, now)
				if err := tx.InsertHolding(ctx, holding); err != nil {
					return err
				}
			} else {
				holding.ApplyBuy(req.Quantity, req.Price, now)
				if err := tx.UpdateHolding(ctx, holding); err != nil {
					return err
				}
			}

		case domain.TradeSell:
			if holding == nil {
				return domain.ErrInsufficientShares
			}
			if err := holding.ApplySell(req.Quantity, now); err != nil {
				return err
			}
			if holding.IsClosed() {
				if err := tx.DeleteHolding(ctx, holding.ID); err != nil {
					return err
				}
			} else if err := tx.UpdateHolding(ctx, holding); err != nil {
				return err
			}
		}

		return tx.AppendTransaction(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// validateTrade rejects empty symbols and non-positive quantities or prices
func validateTrade(req domain.TradeRequest) error {
	if req.Symbol == "" {
		return domain.NewValidationError("Symbol is required")
	}
	if req.Quantity <= 0 {
		return domain.NewValidationError("Quantity must be positive")
	}
	if req.Price <= 0 {
		return domain.NewValidationError("Price must be positive")
	}
	return nil
}

func (s *LedgerService) observe(tradeType, outcome string) {
	if s.observer != nil {
		s.observer.ObserveTrade(tradeType, outcome)
	}
}

// ListHoldings returns the user's holdings
func (s *LedgerService) ListHoldings(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	holdings, err := s.holdings.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load holdings", err)
	}
	return holdings, nil
}

// ListTransactions returns the user's most recent transactions, newest first
func (s *LedgerService) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	transactions, err := s.transactions.ListRecent(ctx, userID, domain.RecentTransactionsLimit)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load transactions", err)
	}
	return transactions, nil
}

// Portfolio values the user's holdings at current quotes
func (s *LedgerService) Portfolio(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	holdings, err := s.ListHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	portfolio := &domain.Portfolio{Lines: make([]domain.PortfolioLine, 0, len(holdings))}
	for _, h := range holdings {
		line := domain.PortfolioLine{
			Symbol:       h.Symbol,
			Quantity:     h.Quantity,
			AveragePrice: h.AveragePrice,
			CurrentPrice: h.AveragePrice,
		}

		if s.quotes != nil {
			if result, err := s.quotes.Quote(ctx, h.Symbol); err == nil {
				line.CurrentPrice = result.Data.Price
				line.PriceSource = string(result.Source)
			}
		}

		line.MarketValue = float64(h.Quantity) * line.CurrentPrice
		line.UnrealizedPnL = line.MarketValue - h.CostBasis()

		portfolio.Lines = append(portfolio.Lines, line)
		portfolio.TotalCost += h.CostBasis()
		portfolio.TotalValue += line.MarketValue
	}
	portfolio.UnrealizedPnL = portfolio.TotalValue - portfolio.TotalCost

	return portfolio, nil
}
