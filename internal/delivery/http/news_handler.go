package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"finai/internal/domain"
	"finai/internal/resilient"
)

// NewsSource is the news service used by NewsHandler
type NewsSource interface {
	Latest(ctx context.Context) resilient.Result[[]domain.Article]
	Search(ctx context.Context, query string) (resilient.Result[[]domain.Article], error)
	Company(ctx context.Context, symbol string) (resilient.Result[[]domain.Article], error)
}

// NewsHandler serves market news. Responses degrade to synthetic articles, never to errors.
type NewsHandler struct {
	news    NewsSource
	timeout time.Duration
}

// NewNewsHandler creates a new NewsHandler
func NewNewsHandler(news NewsSource, timeout time.Duration) *NewsHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NewsHandler{news: news, timeout: timeout}
}

// Latest returns general market news
// GET /api/news/latest
func (h *NewsHandler) Latest(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	return SourcedResponse(c, h.news.Latest(ctx))
}

// Search returns news matching a query
// GET /api/news/search/:query
func (h *NewsHandler) Search(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.news.Search(ctx, c.Param("query"))
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SourcedResponse(c, result)
}

// Company returns news about one company
// GET /api/news/company/:symbol
func (h *NewsHandler) Company(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.news.Company(ctx, c.Param("symbol"))
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SourcedResponse(c, result)
}
