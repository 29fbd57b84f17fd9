package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"finai/internal/database"
	"finai/internal/domain"
	"finai/internal/logger"
)

var (
	pgOnce sync.Once
	pgPool *pgxpool.Pool
	pgErr  error
)

// startPostgres starts one migrated postgres container per test process
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	pgOnce.Do(func() {
		ctx := context.Background()
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:16-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_USER":     "finai",
					"POSTGRES_PASSWORD": "finai",
					"POSTGRES_DB":       "finai",
				},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(90 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			pgErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		host, err := container.Host(ctx)
		if err != nil {
			pgErr = fmt.Errorf("get postgres host: %w", err)
			return
		}
		port, err := container.MappedPort(ctx, "5432/tcp")
		if err != nil {
			pgErr = fmt.Errorf("get postgres port: %w", err)
			return
		}

		url := fmt.Sprintf("postgres://finai:finai@%s:%s/finai?sslmode=disable", host, port.Port())
		pool, err := pgxpool.New(ctx, url)
		if err != nil {
			pgErr = fmt.Errorf("connect postgres: %w", err)
			return
		}
		if err := database.RunMigrations(ctx, pool, logger.NewSilent()); err != nil {
			pgErr = err
			return
		}
		pgPool = pool
	})

	if pgErr != nil {
		t.Skipf("postgres container unavailable: %v", pgErr)
	}
	return pgPool
}

func createUser(t *testing.T, repo domain.UserRepository) *domain.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	user := &domain.User{
		ID:           uuid.New(),
		Username:     "user_" + suffix,
		Email:        suffix + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := startPostgres(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, repo)

	byName, err := repo.GetByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.Username, byEmail.Username)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.PasswordHash)

	_, err = repo.GetByUsername(ctx, "nobody_"+uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := startPostgres(t)
	repo := NewUserRepository(db)

	user := createUser(t, repo)
	dup := &domain.User{
		ID:           uuid.New(),
		Username:     user.Username,
		Email:        "other_" + user.Email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}

	err := repo.Create(context.Background(), dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	assert.Contains(t, err.Error(), UsernameConstraint)
}

func TestLedgerStore_InsertUpdateDelete(t *testing.T) {
	db := startPostgres(t)
	user := createUser(t, NewUserRepository(db))
	store := NewLedgerStore(db)
	holdings := NewHoldingRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	holding := &domain.Holding{ID: uuid.New(), UserID: user.ID, Symbol: "AAPL"}
	holding.ApplyBuy(10, 100, now)

	err := store.WithinTx(ctx, func(tx domain.LedgerTx) error {
		_, err := tx.LockHolding(ctx, user.ID, "AAPL")
		require.ErrorIs(t, err, domain.ErrNotFound)
		return tx.InsertHolding(ctx, holding)
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(tx domain.LedgerTx) error {
		h, err := tx.LockHolding(ctx, user.ID, "AAPL")
		if err != nil {
			return err
		}
		h.ApplyBuy(10, 200, now)
		return tx.UpdateHolding(ctx, h)
	})
	require.NoError(t, err)

	list, err := holdings.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(20), list[0].Quantity)
	assert.InDelta(t, 150.0, list[0].AveragePrice, 1e-9)

	err = store.WithinTx(ctx, func(tx domain.LedgerTx) error {
		return tx.DeleteHolding(ctx, holding.ID)
	})
	require.NoError(t, err)

	list, err = holdings.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLedgerStore_RollbackOnError(t *testing.T) {
	db := startPostgres(t)
	user := createUser(t, NewUserRepository(db))
	store := NewLedgerStore(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(tx domain.LedgerTx) error {
		h := &domain.Holding{ID: uuid.New(), UserID: user.ID, Symbol: "MSFT"}
		h.ApplyBuy(5, 380.32, time.Now().UTC())
		if err := tx.InsertHolding(ctx, h); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := NewHoldingRepository(db).ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLedgerStore_DuplicateInsertIsConcurrentUpdate(t *testing.T) {
	db := startPostgres(t)
	user := createUser(t, NewUserRepository(db))
	store := NewLedgerStore(db)
	ctx := context.Background()

	insert := func() error {
		return store.WithinTx(ctx, func(tx domain.LedgerTx) error {
			h := &domain.Holding{ID: uuid.New(), UserID: user.ID, Symbol: "GOOGL"}
			h.ApplyBuy(1, 142.93, time.Now().UTC())
			return tx.InsertHolding(ctx, h)
		})
	}

	require.NoError(t, insert())
	assert.ErrorIs(t, insert(), domain.ErrConcurrentUpdate)
}

func TestTransactionRepository_ListRecentNewestFirst(t *testing.T) {
	db := startPostgres(t)
	user := createUser(t, NewUserRepository(db))
	store := NewLedgerStore(db)
	repo := NewTransactionRepository(db)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 25; i++ {
		tr := &domain.Transaction{
			ID:        uuid.New(),
			UserID:    user.ID,
			Symbol:    "AAPL",
			Type:      domain.TradeBuy,
			Quantity:  int64(i + 1),
			Price:     100,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.WithinTx(ctx, func(tx domain.LedgerTx) error {
			return tx.AppendTransaction(ctx, tr)
		}))
	}

	list, err := repo.ListRecent(ctx, user.ID, domain.RecentTransactionsLimit)
	require.NoError(t, err)
	require.Len(t, list, domain.RecentTransactionsLimit)
	assert.Equal(t, int64(25), list[0].Quantity)
	assert.Equal(t, int64(6), list[len(list)-1].Quantity)
}

func TestChatRepository_MessagesAndContext(t *testing.T) {
	db := startPostgres(t)
	user := createUser(t, NewUserRepository(db))
	repo := NewChatRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	session := &domain.ChatSession{ID: uuid.New(), UserID: user.ID, CreatedAt: now, LastInteraction: now}
	require.NoError(t, repo.CreateSession(ctx, session))

	_, err := repo.LatestContextMessage(ctx, session.ID, domain.ContextThreshold)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	dump := strings.Repeat("x", domain.ContextThreshold+1)
	msgs := []*domain.ChatMessage{
		{ID: uuid.New(), SessionID: session.ID, Body: dump, IsUser: false, CreatedAt: now},
		{ID: uuid.New(), SessionID: session.ID, Body: "what is the revenue?", IsUser: true, CreatedAt: now.Add(time.Second)},
		{ID: uuid.New(), SessionID: session.ID, Body: "short reply", IsUser: false, CreatedAt: now.Add(2 * time.Second)},
	}
	for _, m := range msgs {
		require.NoError(t, repo.AppendMessage(ctx, m))
	}

	list, err := repo.ListMessages(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, dump, list[0].Body)
	assert.Equal(t, "short reply", list[2].Body)

	// The later short reply does not hide the dump
	got, err := repo.LatestContextMessage(ctx, session.ID, domain.ContextThreshold)
	require.NoError(t, err)
	assert.Equal(t, msgs[0].ID, got.ID)

	later := now.Add(time.Minute)
	require.NoError(t, repo.TouchSession(ctx, session.ID, later))
	s, err := repo.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, later, s.LastInteraction, time.Millisecond)

	_, err = repo.GetSession(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
