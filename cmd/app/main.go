package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"finai/configs"
	"finai/internal/adapter/alphavantage"
	"finai/internal/adapter/finnhub"
	"finai/internal/adapter/gemini"
	"finai/internal/adapter/groq"
	"finai/internal/adapter/newsapi"
	"finai/internal/cache"
	"finai/internal/database"
	httpdelivery "finai/internal/delivery/http"
	"finai/internal/document"
	"finai/internal/domain"
	"finai/internal/infra"
	"finai/internal/logger"
	"finai/internal/metrics"
	"finai/internal/middleware"
	"finai/internal/repository"
	"finai/internal/service"
	"finai/internal/synthetic"
	"finai/internal/usecase"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := configs.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Server.LogLevel)
	if envErr != nil {
		log.Warn().Msg(".env file not found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	// Initialize database
	db, err := infra.NewDatabase(ctx, cfg.Database.URL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Optional quote cache
	var (
		redisClient *redis.Client
		quoteCache  domain.QuoteCache = cache.NoopCache{}
	)
	if cfg.Redis.URL != "" {
		redisClient, err = infra.NewRedis(ctx, cfg.Redis.URL, log)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, quote cache disabled")
		} else {
			defer redisClient.Close()
			quoteCache = cache.NewRedisCache(redisClient, cfg.Redis.GetQuoteTTL(), cfg.Redis.GetHistoryTTL(), log.Component("cache"))
		}
	}

	m := metrics.New()
	gen := synthetic.New()
	timeout := cfg.Providers.GetTimeout()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	ledgerStore := repository.NewLedgerStore(db)
	holdingRepo := repository.NewHoldingRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	chatRepo := repository.NewChatRepository(db)

	// Remote providers, each skipped when its key is missing
	var (
		quoteProviders   []domain.QuoteProvider
		newsProviders    []domain.NewsProvider
		companyProviders []domain.CompanyNewsProvider
		llms             []domain.LLMProvider
		searcher         domain.SymbolSearcher
		history          domain.HistoryProvider
		overviews        domain.OverviewProvider
	)

	if key := cfg.Providers.AlphaVantageKey; key != "" {
		av := alphavantage.NewClient(key, alphavantage.WithLogger(log.Component(alphavantage.Name)))
		quoteProviders = append(quoteProviders, av)
		searcher = av
		history = av
		overviews = av
	}
	if key := cfg.Providers.NewsAPIKey; key != "" {
		newsProviders = append(newsProviders, newsapi.NewClient(key, newsapi.WithLogger(log.Component(newsapi.Name))))
	}
	if key := cfg.Providers.FinnhubKey; key != "" {
		fh := finnhub.NewClient(key, finnhub.WithLogger(log.Component(finnhub.Name)))
		quoteProviders = append(quoteProviders, fh)
		newsProviders = append(newsProviders, fh)
		companyProviders = append(companyProviders, fh)
	}
	if key := cfg.Providers.GroqKey; key != "" {
		llms = append(llms, groq.NewClient(key,
			groq.WithModel(cfg.Providers.GroqModel),
			groq.WithLogger(log.Component(groq.Name)),
		))
	}
	if key := cfg.Providers.GeminiKey; key != "" {
		gm, err := gemini.NewClient(ctx, key,
			gemini.WithModel(cfg.Providers.GeminiModel),
			gemini.WithLogger(log.Component(gemini.Name)),
		)
		if err != nil {
			log.Warn().Err(err).Msg("gemini client unavailable, provider skipped")
		} else {
			llms = append(llms, gm)
		}
	}

	log.Info().
		Int("quote_providers", len(quoteProviders)).
		Int("news_providers", len(newsProviders)).
		Int("llm_providers", len(llms)).
		Bool("cache", redisClient != nil).
		Msg("providers configured")

	// Initialize services
	marketData := service.NewMarketDataService(service.MarketDataConfig{
		QuoteProviders: quoteProviders,
		Searcher:       searcher,
		History:        history,
		Cache:          quoteCache,
		Holdings:       holdingRepo,
		Generator:      gen,
		Timeout:        timeout,
		Observer:       m,
		Logger:         log.Component("market"),
	})
	news := service.NewNewsService(service.NewsConfig{
		Providers:        newsProviders,
		CompanyProviders: companyProviders,
		Generator:        gen,
		Timeout:          timeout,
		Observer:         m,
		Logger:           log.Component("news"),
	})
	analysis := service.NewAnalysisService(llms, marketData, overviews, gen, timeout, m, log.Component("analysis"))
	assistant := service.NewAssistantService(llms, gen, timeout, m, log.Component("assistant"))

	tokens := middleware.NewTokenManager(cfg.JWTSecretOrDefault(), cfg.Auth.GetTokenTTL())
	authService := usecase.NewAuthService(userRepo, tokens, log.Component("auth"))
	ledgerService := usecase.NewLedgerService(ledgerStore, holdingRepo, transactionRepo, marketData, m, log.Component("ledger"))
	chatService := usecase.NewChatService(chatRepo, assistant, document.NewPDFExtractor(), log.Component("chat"))

	if cfg.Jobs.SeedDemoUser {
		seedDemoUser(ctx, authService, ledgerService, log.Component("seed"))
	}

	// Quote warmer only makes sense with a cache to warm
	if redisClient != nil {
		scheduler := infra.NewScheduler(marketData, cfg.Jobs.QuoteWarmSchedule, log.Component("scheduler"))
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start quote warmer")
		}
		defer scheduler.Stop()
	}

	// API server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	httpdelivery.SetupRoutes(e, &httpdelivery.RouterConfig{
		AuthHandler:     httpdelivery.NewAuthHandler(authService, tokens.TTL(), cfg.IsProduction()),
		StockHandler:    httpdelivery.NewStockHandler(marketData, ledgerService, 30*time.Second),
		NewsHandler:     httpdelivery.NewNewsHandler(news, 30*time.Second),
		ChatHandler:     httpdelivery.NewChatHandler(chatService, 60*time.Second),
		AnalysisHandler: httpdelivery.NewAnalysisHandler(analysis, 60*time.Second),
		Tokens:          tokens,
		Observer:        m,
		Logger:          log.Component("http"),
	})

	apiAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	go func() {
		log.Info().Str("addr", apiAddr).Str("env", cfg.Server.Env).Msg("FinAI API starting")
		if err := e.Start(apiAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start API server")
		}
	}()

	// Ops server
	ops := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.MetricsPort),
		Handler:      opsRouter(db, redisClient, m),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", ops.Addr).Msg("ops server starting")
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start ops server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("API server forced to shutdown")
	}
	if err := ops.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server forced to shutdown")
	}

	log.Info().Msg("servers exited gracefully")
}
