package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"finai/internal/domain"
)

// TransactionRepositoryImpl implements the TransactionRepository interface
type TransactionRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *pgxpool.Pool) domain.TransactionRepository {
	return &TransactionRepositoryImpl{db: db}
}

// ListRecent retrieves the newest transactions for a user
func (r *TransactionRepositoryImpl) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	query := `
		SELECT id, user_id, symbol, transaction_type, quantity, price, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0, limit)
	for rows.Next() {
		tr := &domain.Transaction{}
		if err := rows.Scan(
			&tr.ID,
			&tr.UserID,
			&tr.Symbol,
			&tr.Type,
			&tr.Quantity,
			&tr.Price,
			&tr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}
