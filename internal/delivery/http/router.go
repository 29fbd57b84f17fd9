package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"finai/internal/logger"
	custommiddleware "finai/internal/middleware"
)

// RequestObserver records served requests
type RequestObserver interface {
	ObserveRequest(method, route string, status int)
}

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler     *AuthHandler
	StockHandler    *StockHandler
	NewsHandler     *NewsHandler
	ChatHandler     *ChatHandler
	AnalysisHandler *AnalysisHandler
	Tokens          *custommiddleware.TokenManager
	Observer        RequestObserver
	Logger          *logger.Logger
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	log := config.Logger
	if log == nil {
		log = logger.NewSilent()
	}

	e.HTTPErrorHandler = errorHandler(log)

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	if config.Observer != nil {
		e.Use(observeRequests(config.Observer))
	}

	// Liveness
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]string{
			"status":  "healthy",
			"service": "finai-api",
		})
	})

	requireAuth := config.Tokens.Middleware()

	// API group
	api := e.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", config.AuthHandler.Register)
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
		auth.GET("/profile", config.AuthHandler.Profile, requireAuth)
	}

	// Stock routes (protected)
	stocks := api.Group("/stocks", requireAuth)
	{
		stocks.GET("/quote/:symbol", config.StockHandler.Quote)
		stocks.GET("/search/:query", config.StockHandler.Search)
		stocks.GET("/history/:symbol", config.StockHandler.History)
		stocks.GET("/holdings", config.StockHandler.Holdings)
		stocks.GET("/transactions", config.StockHandler.Transactions)
		stocks.GET("/portfolio", config.StockHandler.Portfolio)
		stocks.POST("/buy", config.StockHandler.Buy)
		stocks.POST("/sell", config.StockHandler.Sell)
	}

	// News routes (protected)
	news := api.Group("/news", requireAuth)
	{
		news.GET("/latest", config.NewsHandler.Latest)
		news.GET("/search/:query", config.NewsHandler.Search)
		news.GET("/company/:symbol", config.NewsHandler.Company)
	}

	// Chatbot routes (protected)
	chat := api.Group("/chatbot", requireAuth)
	{
		chat.POST("/session", config.ChatHandler.CreateSession)
		chat.POST("/chat", config.ChatHandler.Chat)
		chat.GET("/history/:session_id", config.ChatHandler.History)
		chat.POST("/upload", config.ChatHandler.Upload)
		chat.POST("/message", config.ChatHandler.Message)
	}

	// Analysis routes (protected)
	analysis := api.Group("/analysis", requireAuth)
	{
		analysis.GET("/stock/:symbol", config.AnalysisHandler.Stock)
	}
}

// errorHandler renders echo errors, such as auth rejections and unknown routes, as ErrorBody
func errorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := http.StatusText(status)
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		} else {
			log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = ErrorResponse(c, status, message)
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to write error response")
		}
	}
}

// observeRequests reports each request by route pattern, not raw path
func observeRequests(observer RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			observer.ObserveRequest(c.Request().Method, c.Path(), status)
			return err
		}
	}
}
