package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finai/internal/domain"
	"finai/internal/middleware"
	"finai/internal/resilient"
	"finai/internal/usecase"
)

type stubAuth struct {
	user *domain.User
}

func (s *stubAuth) Register(ctx context.Context, in usecase.RegisterInput) (string, *domain.User, error) {
	if in.Username == "taken" {
		return "", nil, domain.NewValidationError("Username already exists")
	}
	return "new-token", s.user, nil
}

func (s *stubAuth) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if password != "secret1" {
		return "", nil, domain.NewAuthError("Invalid username or password")
	}
	return "login-token", s.user, nil
}

func (s *stubAuth) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.user, nil
}

type stubMarket struct{}

func (stubMarket) Quote(ctx context.Context, symbol string) (resilient.Result[*domain.Quote], error) {
	return resilient.Result[*domain.Quote]{
		Data:   &domain.Quote{Symbol: strings.ToUpper(symbol), Price: 123.45, Source: "Synthetic Data Generator"},
		Source: resilient.SourceSynthetic,
	}, nil
}

func (stubMarket) Search(ctx context.Context, query string) ([]domain.SymbolMatch, error) {
	if query == "zzz" {
		return nil, domain.NewNotFoundError("No matching stocks found")
	}
	return []domain.SymbolMatch{{Symbol: "AAPL", CompanyName: "Apple Inc", Price: 190}}, nil
}

func (stubMarket) History(ctx context.Context, symbol string) (*domain.PriceHistory, error) {
	return &domain.PriceHistory{Symbol: symbol, Dates: []string{"2024-01-02"}, Prices: []float64{185.6}}, nil
}

type stubLedger struct {
	last domain.TradeRequest
}

func (s *stubLedger) Buy(ctx context.Context, req domain.TradeRequest) (*domain.Transaction, error) {
	s.last = req
	return &domain.Transaction{ID: uuid.New(), Symbol: req.Symbol, Type: domain.TradeBuy, Quantity: req.Quantity, Price: req.Price}, nil
}

func (s *stubLedger) Sell(ctx context.Context, req domain.TradeRequest) (*domain.Transaction, error) {
	s.last = req
	return nil, domain.ErrInsufficientShares
}

func (s *stubLedger) ListHoldings(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	return []*domain.Holding{{Symbol: "AAPL", Quantity: 10, AveragePrice: 150}}, nil
}

func (s *stubLedger) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*domain.Transaction, error) {
	return nil, domain.NewPersistenceError("Failed to load transactions", context.DeadlineExceeded)
}

func (s *stubLedger) Portfolio(ctx context.Context, userID uuid.UUID) (*domain.Portfolio, error) {
	return &domain.Portfolio{}, nil
}

type stubNews struct{}

func (stubNews) Latest(ctx context.Context) resilient.Result[[]domain.Article] {
	return resilient.Result[[]domain.Article]{Data: []domain.Article{{Title: "Markets rally"}}, Source: resilient.SourceReal}
}

func (stubNews) Search(ctx context.Context, query string) (resilient.Result[[]domain.Article], error) {
	return resilient.Result[[]domain.Article]{Data: []domain.Article{{Title: query}}, Source: resilient.SourceReal}, nil
}

func (stubNews) Company(ctx context.Context, symbol string) (resilient.Result[[]domain.Article], error) {
	return resilient.Result[[]domain.Article]{Data: []domain.Article{}, Source: resilient.SourceSynthetic}, nil
}

type stubChat struct {
	lastRef    domain.SessionRef
	ingested   string
	ingestSize int
}

func (s *stubChat) CreateSession(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	return &domain.ChatSession{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), UserID: userID}, nil
}

func (s *stubChat) PostMessage(ctx context.Context, ref domain.SessionRef, userID uuid.UUID, text string) (*domain.ChatReply, error) {
	s.lastRef = ref
	id, ok := ref.Existing()
	if !ok {
		id = uuid.New()
	}
	return &domain.ChatReply{Response: "echo: " + text, SessionID: id, Source: "real"}, nil
}

func (s *stubChat) History(ctx context.Context, sessionID, userID uuid.UUID) ([]*domain.ChatMessage, error) {
	return nil, domain.NewNotFoundError("Chat session not found")
}

func (s *stubChat) IngestDocument(ctx context.Context, sessionID, userID uuid.UUID, filename string, data []byte) error {
	s.ingested = filename
	s.ingestSize = len(data)
	return nil
}

func (s *stubChat) Ask(ctx context.Context, text string) (*domain.ChatReply, error) {
	return &domain.ChatReply{Response: "answer", Source: "synthetic"}, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(ctx context.Context, symbol string) (resilient.Result[*domain.Analysis], error) {
	return resilient.Result[*domain.Analysis]{
		Data:   &domain.Analysis{Symbol: symbol, Analysis: "Looks fine", Sentiment: domain.SentimentNeutral, Source: "Groq LLM Analysis"},
		Source: resilient.SourceReal,
	}, nil
}

type countingObserver struct {
	routes []string
}

func (o *countingObserver) ObserveRequest(method, route string, status int) {
	o.routes = append(o.routes, method+" "+route)
}

type testServer struct {
	e        *echo.Echo
	tokens   *middleware.TokenManager
	ledger   *stubLedger
	chat     *stubChat
	observer *countingObserver
	token    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens := middleware.NewTokenManager("test-secret", time.Hour)
	user := &domain.User{ID: uuid.New(), Username: "alice", Email: "alice@example.com", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	token, err := tokens.Issue(user.ID)
	require.NoError(t, err)

	s := &testServer{
		e:        echo.New(),
		tokens:   tokens,
		ledger:   &stubLedger{},
		chat:     &stubChat{},
		observer: &countingObserver{},
		token:    token,
	}
	SetupRoutes(s.e, &RouterConfig{
		AuthHandler:     NewAuthHandler(&stubAuth{user: user}, time.Hour, false),
		StockHandler:    NewStockHandler(stubMarket{}, s.ledger, time.Second),
		NewsHandler:     NewNewsHandler(stubNews{}, time.Second),
		ChatHandler:     NewChatHandler(s.chat, time.Second),
		AnalysisHandler: NewAnalysisHandler(stubAnalyzer{}, time.Second),
		Tokens:          tokens,
		Observer:        s.observer,
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/register", map[string]string{"username": "alice", "email": "a@b.c", "password": "secret1"}, false)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var tok map[string]string
	decode(t, rec, &tok)
	assert.Equal(t, "new-token", tok["token"])
	assert.Contains(t, rec.Header().Get("Set-Cookie"), middleware.TokenCookie+"=new-token")

	rec = s.do(t, http.MethodPost, "/api/auth/register", map[string]string{"username": "taken", "email": "a@b.c", "password": "secret1"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorBody
	decode(t, rec, &body)
	assert.Equal(t, "Username already exists", body.Error)

	rec = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "secret1"}, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/auth/profile", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	var profile map[string]interface{}
	decode(t, rec, &profile)
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "alice@example.com", profile["email"])
	assert.Contains(t, profile, "created_at")

	rec = s.do(t, http.MethodPost, "/api/auth/logout", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/auth/profile", "/api/stocks/holdings", "/api/news/latest", "/api/analysis/stock/AAPL"} {
		rec := s.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestStockRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/stocks/quote/aapl", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "synthetic", rec.Header().Get(DataSourceHeader))
	var quote domain.Quote
	decode(t, rec, &quote)
	assert.Equal(t, "AAPL", quote.Symbol)

	rec = s.do(t, http.MethodGet, "/api/stocks/search/zzz", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/stocks/history/AAPL", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	var history map[string]interface{}
	decode(t, rec, &history)
	assert.Contains(t, history, "dates")
	assert.Contains(t, history, "prices")

	rec = s.do(t, http.MethodPost, "/api/stocks/buy", map[string]interface{}{"symbol": "AAPL", "quantity": 10, "price": 150.5}, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(10), s.ledger.last.Quantity)
	assert.NotEqual(t, uuid.Nil, s.ledger.last.UserID)

	rec = s.do(t, http.MethodPost, "/api/stocks/sell", map[string]interface{}{"symbol": "AAPL", "quantity": 99, "price": 150}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorBody
	decode(t, rec, &body)
	assert.Equal(t, "Insufficient shares", body.Error)

	rec = s.do(t, http.MethodGet, "/api/stocks/holdings", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Read failures on the transaction log are server errors
	rec = s.do(t, http.MethodGet, "/api/stocks/transactions", nil, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	assert.Contains(t, s.observer.routes, "GET /api/stocks/quote/:symbol")
}

func TestNewsAndAnalysisRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/news/latest", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "real", rec.Header().Get(DataSourceHeader))

	rec = s.do(t, http.MethodGet, "/api/news/company/TSLA", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "synthetic", rec.Header().Get(DataSourceHeader))

	rec = s.do(t, http.MethodGet, "/api/analysis/stock/NVDA", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	var analysis domain.Analysis
	decode(t, rec, &analysis)
	assert.Equal(t, "NVDA", analysis.Symbol)
	assert.Equal(t, "Groq LLM Analysis", analysis.Source)
}

func TestChatRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/chatbot/session", nil, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var session map[string]string
	decode(t, rec, &session)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", session["session_id"])

	rec = s.do(t, http.MethodPost, "/api/chatbot/chat", map[string]string{"message": "hi"}, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	_, existing := s.chat.lastRef.Existing()
	assert.False(t, existing)

	id := uuid.New()
	rec = s.do(t, http.MethodPost, "/api/chatbot/chat", map[string]string{"message": "hi", "session_id": id.String()}, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	got, existing := s.chat.lastRef.Existing()
	assert.True(t, existing)
	assert.Equal(t, id, got)

	rec = s.do(t, http.MethodPost, "/api/chatbot/chat", map[string]string{"message": "hi", "session_id": "nope"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/chatbot/history/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/chatbot/message", map[string]string{"message": "What is an ETF?"}, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	var reply map[string]string
	decode(t, rec, &reply)
	assert.Equal(t, "answer", reply["response"])
}

func TestChatUpload(t *testing.T) {
	s := newTestServer(t)

	upload := func(sessionID string, withFile bool) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		if sessionID != "" {
			require.NoError(t, w.WriteField("session_id", sessionID))
		}
		if withFile {
			part, err := w.CreateFormFile("file", "report.pdf")
			require.NoError(t, err)
			_, err = part.Write([]byte("%PDF-1.4 test"))
			require.NoError(t, err)
		}
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/chatbot/upload", &buf)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+s.token)
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		return rec
	}

	rec := upload(uuid.NewString(), true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "report.pdf", s.chat.ingested)
	assert.Equal(t, len("%PDF-1.4 test"), s.chat.ingestSize)

	rec = upload("", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(uuid.NewString(), false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
