package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"finai/internal/logger"
)

//go:embed migrations/001_init_schema.sql
var migrationSQL string

// RunMigrations creates the schema on an empty database
func RunMigrations(ctx context.Context, db *pgxpool.Pool, log *logger.Logger) error {
	log.Info().Msg("Running database migrations...")

	// Check if users table exists
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = 'users'
		)
	`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if migrations needed: %w", err)
	}

	if exists {
		log.Info().Msg("Database already migrated, skipping")
		return nil
	}

	if _, err := db.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}
