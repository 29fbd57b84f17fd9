package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"finai/internal/domain"
)

// LedgerStoreImpl implements domain.LedgerStore on PostgreSQL transactions
type LedgerStoreImpl struct {
	db *pgxpool.Pool
}

// NewLedgerStore creates a new LedgerStore
func NewLedgerStore(db *pgxpool.Pool) domain.LedgerStore {
	return &LedgerStoreImpl{db: db}
}

// WithinTx runs fn inside a read-committed transaction
func (s *LedgerStoreImpl) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op
	defer tx.Rollback(ctx)

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type ledgerTx struct {
	tx pgx.Tx
}

// LockHolding loads the holding row with FOR UPDATE
func (t *ledgerTx) LockHolding(ctx context.Context, userID uuid.UUID, symbol string) (*domain.Holding, error) {
	query := `
		SELECT id, user_id, symbol, quantity, average_price, last_updated
		FROM stock_holdings
		WHERE user_id = $1 AND symbol = $2
		FOR UPDATE
	`

	h := &domain.Holding{}
	err := t.tx.QueryRow(ctx, query, userID, symbol).Scan(
		&h.ID,
		&h.UserID,
		&h.Symbol,
		&h.Quantity,
		&h.AveragePrice,
		&h.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock holding: %w", err)
	}

	return h, nil
}

// InsertHolding creates a holding row
func (t *ledgerTx) InsertHolding(ctx context.Context, h *domain.Holding) error {
	query := `
		INSERT INTO stock_holdings (id, user_id, symbol, quantity, average_price, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := t.tx.Exec(ctx, query, h.ID, h.UserID, h.Symbol, h.Quantity, h.AveragePrice, h.LastUpdated)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return domain.ErrConcurrentUpdate
		}
		return fmt.Errorf("failed to insert holding: %w", err)
	}

	return nil
}

// UpdateHolding writes the new quantity and average price
func (t *ledgerTx) UpdateHolding(ctx context.Context, h *domain.Holding) error {
	query := `
		UPDATE stock_holdings
		SET quantity = $1, average_price = $2, last_updated = $3
		WHERE id = $4
	`

	tag, err := t.tx.Exec(ctx, query, h.Quantity, h.AveragePrice, h.LastUpdated, h.ID)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("failed to update holding %s: %w", h.ID, domain.ErrNotFound)
	}

	return nil
}

// DeleteHolding removes a holding row
func (t *ledgerTx) DeleteHolding(ctx context.Context, id uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM stock_holdings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("failed to delete holding %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// AppendTransaction inserts a transaction log entry
func (t *ledgerTx) AppendTransaction(ctx context.Context, tr *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, symbol, transaction_type, quantity, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := t.tx.Exec(ctx, query, tr.ID, tr.UserID, tr.Symbol, tr.Type, tr.Quantity, tr.Price, tr.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}
