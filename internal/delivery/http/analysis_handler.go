package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"finai/internal/domain"
	"finai/internal/resilient"
)

// Analyzer produces stock analyses
type Analyzer interface {
	Analyze(ctx context.Context, symbol string) (resilient.Result[*domain.Analysis], error)
}

// AnalysisHandler serves AI stock analysis
type AnalysisHandler struct {
	analyzer Analyzer
	timeout  time.Duration
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(analyzer Analyzer, timeout time.Duration) *AnalysisHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnalysisHandler{analyzer: analyzer, timeout: timeout}
}

// Stock returns an analysis of one symbol
// GET /api/analysis/stock/:symbol
func (h *AnalysisHandler) Stock(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.analyzer.Analyze(ctx, c.Param("symbol"))
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SourcedResponse(c, result)
}
