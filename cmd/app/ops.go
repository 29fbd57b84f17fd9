package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"

	"finai/internal/domain"
	"finai/internal/logger"
	"finai/internal/metrics"
	"finai/internal/usecase"
)

// pinger is satisfied by the pgx pool
type pinger interface {
	Ping(ctx context.Context) error
}

// opsRouter serves health and metrics on the ops port
func opsRouter(db pinger, redisClient *redis.Client, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", handleHealth(db, redisClient))
	r.Handle("/metrics", m.Handler())

	return r
}

func handleHealth(db pinger, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := "healthy"
		dbStatus := "healthy"
		if err := db.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
			status = "degraded"
		}

		redisStatus := "disabled"
		if redisClient != nil {
			redisStatus = "healthy"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				redisStatus = "unhealthy"
			}
		}

		code := http.StatusOK
		if dbStatus != "healthy" {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    status,
			"service":   "finai",
			"database":  dbStatus,
			"redis":     redisStatus,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

// demoHoldings are bought for the demo user on first start
var demoHoldings = []struct {
	symbol   string
	quantity int64
	price    float64
}{
	{"AAPL", 10, 175.64},
	{"MSFT", 5, 380.32},
	{"GOOGL", 8, 142.93},
}

// seedDemoUser creates the demo account and its starting portfolio once
func seedDemoUser(ctx context.Context, auth *usecase.AuthService, ledger *usecase.LedgerService, log *logger.Logger) {
	_, user, err := auth.Register(ctx, usecase.RegisterInput{
		Username: "test",
		Email:    "test@example.com",
		Password: "password123",
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			log.Info().Msg("demo user already exists, skipping seed")
			return
		}
		log.Warn().Err(err).Msg("failed to create demo user")
		return
	}

	for _, h := range demoHoldings {
		_, err := ledger.Buy(ctx, domain.TradeRequest{
			UserID:   user.ID,
			Symbol:   h.symbol,
			Quantity: h.quantity,
			Price:    h.price,
		})
		if err != nil {
			log.Warn().Err(err).Str("symbol", h.symbol).Msg("failed to seed demo holding")
		}
	}

	log.Info().Str("user_id", user.ID.String()).Int("holdings", len(demoHoldings)).Msg("demo user seeded")
}
