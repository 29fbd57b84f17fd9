package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"finai/internal/domain"
)

// HoldingRepositoryImpl implements the HoldingRepository interface
type HoldingRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewHoldingRepository creates a new HoldingRepository
func NewHoldingRepository(db *pgxpool.Pool) domain.HoldingRepository {
	return &HoldingRepositoryImpl{db: db}
}

// ListByUser retrieves all holdings for a user
func (r *HoldingRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	query := `
		SELECT id, user_id, symbol, quantity, average_price, last_updated
		FROM stock_holdings
		WHERE user_id = $1
		ORDER BY symbol ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := make([]*domain.Holding, 0)
	for rows.Next() {
		h := &domain.Holding{}
		if err := rows.Scan(
			&h.ID,
			&h.UserID,
			&h.Symbol,
			&h.Quantity,
			&h.AveragePrice,
			&h.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return holdings, nil
}

// ListSymbols retrieves the distinct symbols held by any user
func (r *HoldingRepositoryImpl) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT symbol FROM stock_holdings ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query held symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}

	return symbols, nil
}
