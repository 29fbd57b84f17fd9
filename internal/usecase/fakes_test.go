package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"finai/internal/domain"
	"finai/internal/resilient"
)

// memoryLedger implements LedgerStore, HoldingRepository and TransactionRepository.
// A transaction works on a copy and is committed only when fn returns nil.
type memoryLedger struct {
	mu           sync.Mutex
	holdings     map[string]*domain.Holding
	transactions []*domain.Transaction

	// insertConflicts makes the next N inserts fail with ErrConcurrentUpdate
	insertConflicts int
	appendErr       error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{holdings: make(map[string]*domain.Holding)}
}

func holdingKey(userID uuid.UUID, symbol string) string {
	return userID.String() + "/" + symbol
}

func (m *memoryLedger) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryLedgerTx{parent: m, holdings: make(map[string]*domain.Holding, len(m.holdings))}
	for k, h := range m.holdings {
		c := *h
		tx.holdings[k] = &c
	}

	if err := fn(tx); err != nil {
		return err
	}

	m.holdings = tx.holdings
	m.transactions = append(m.transactions, tx.appended...)
	return nil
}

func (m *memoryLedger) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Holding
	for _, h := range m.holdings {
		if h.UserID == userID {
			c := *h
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *memoryLedger) ListSymbols(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, h := range m.holdings {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			out = append(out, h.Symbol)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memoryLedger) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Transaction
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.transactions[i].UserID == userID {
			out = append(out, m.transactions[i])
		}
	}
	return out, nil
}

func (m *memoryLedger) holding(userID uuid.UUID, symbol string) *domain.Holding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holdings[holdingKey(userID, symbol)]
}

func (m *memoryLedger) transactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.transactions)
}

type memoryLedgerTx struct {
	parent   *memoryLedger
	holdings map[string]*domain.Holding
	appended []*domain.Transaction
}

func (tx *memoryLedgerTx) LockHolding(ctx context.Context, userID uuid.UUID, symbol string) (*domain.Holding, error) {
	h, ok := tx.holdings[holdingKey(userID, symbol)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *h
	return &c, nil
}

func (tx *memoryLedgerTx) InsertHolding(ctx context.Context, holding *domain.Holding) error {
	if tx.parent.insertConflicts > 0 {
		tx.parent.insertConflicts--
		return domain.ErrConcurrentUpdate
	}
	key := holdingKey(holding.UserID, holding.Symbol)
	if _, ok := tx.holdings[key]; ok {
		return domain.ErrConcurrentUpdate
	}
	c := *holding
	tx.holdings[key] = &c
	return nil
}

func (tx *memoryLedgerTx) UpdateHolding(ctx context.Context, holding *domain.Holding) error {
	key := holdingKey(holding.UserID, holding.Symbol)
	if _, ok := tx.holdings[key]; !ok {
		return fmt.Errorf("holding %s: %w", holding.ID, domain.ErrNotFound)
	}
	c := *holding
	tx.holdings[key] = &c
	return nil
}

func (tx *memoryLedgerTx) DeleteHolding(ctx context.Context, id uuid.UUID) error {
	for k, h := range tx.holdings {
		if h.ID == id {
			delete(tx.holdings, k)
			return nil
		}
	}
	return fmt.Errorf("holding %s: %w", id, domain.ErrNotFound)
}

func (tx *memoryLedgerTx) AppendTransaction(ctx context.Context, t *domain.Transaction) error {
	if tx.parent.appendErr != nil {
		return tx.parent.appendErr
	}
	tx.appended = append(tx.appended, t)
	return nil
}

type fakeQuotes struct {
	prices map[string]float64
}

func (f *fakeQuotes) Quote(ctx context.Context, symbol string) (resilient.Result[*domain.Quote], error) {
	price, ok := f.prices[symbol]
	if !ok {
		return resilient.Result[*domain.Quote]{}, errors.New("no quote")
	}
	return resilient.Result[*domain.Quote]{
		Data:   &domain.Quote{Symbol: symbol, Price: price},
		Source: resilient.SourceReal,
	}, nil
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveTrade(tradeType, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, tradeType+":"+outcome)
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	// createErr is returned by the next Create
	createErr error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[uuid.UUID]*domain.User)}
}

func (m *memoryUsers) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		return err
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: users_username_key", domain.ErrDuplicateUser)
		}
		if u.Email == user.Email {
			return fmt.Errorf("%w: users_email_key", domain.ErrDuplicateUser)
		}
	}
	c := *user
	m.users[user.ID] = &c
	return nil
}

func (m *memoryUsers) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memoryUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.Username == username })
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.Email == email })
}

func (m *memoryUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeTokens struct{}

func (fakeTokens) Issue(userID uuid.UUID) (string, error) {
	return "token-" + userID.String(), nil
}

type memoryChats struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.ChatSession
	messages []*domain.ChatMessage
}

func newMemoryChats() *memoryChats {
	return &memoryChats{sessions: make(map[uuid.UUID]*domain.ChatSession)}
}

func (m *memoryChats) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *session
	m.sessions[session.ID] = &c
	return nil
}

func (m *memoryChats) GetSession(ctx context.Context, id uuid.UUID) (*domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memoryChats) TouchSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.LastInteraction = at
	return nil
}

func (m *memoryChats) AppendMessage(ctx context.Context, message *domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *message
	m.messages = append(m.messages, &c)
	return nil
}

func (m *memoryChats) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ChatMessage
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryChats) LatestContextMessage(ctx context.Context, sessionID uuid.UUID, minLength int) (*domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.SessionID == sessionID && !msg.IsUser && len([]rune(msg.Body)) > minLength {
			return msg, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryChats) sessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type fakeAssistant struct {
	mu       sync.Mutex
	reply    string
	source   resilient.Source
	contexts []string
}

func (f *fakeAssistant) Reply(ctx context.Context, message, documentContext string) resilient.Result[string] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contexts = append(f.contexts, documentContext)
	return resilient.Result[string]{Data: f.reply, Source: f.source, Provider: "fake"}
}

func (f *fakeAssistant) lastContext() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.contexts) == 0 {
		return ""
	}
	return f.contexts[len(f.contexts)-1]
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func longText(n int) string {
	return strings.Repeat("x", n)
}
