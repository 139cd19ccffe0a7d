package rest

import (
	"context"
	"mySmartMarket/pkg/logger"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type DatabasePinger interface {
	Ping(ctx context.Context) error
}

type CategoryLister interface {
	FindDistinctCategories(ctx context.Context) ([]string, error)
}

type HealthHandler struct {
	db         DatabasePinger
	categories CategoryLister
	version    string
	timeout    time.Duration
}

func NewHealthHandler(db DatabasePinger, categories CategoryLister, version string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		categories: categories,
		version:    version,
		timeout:    3 * time.Second,
	}
}

type HealthResponse struct {
	Status          string `json:"status"`
	Database        string `json:"database"`
	CategoriesCount int    `json:"categories_count"`
	Version         string `json:"version"`
}

// Health reports degraded with a 503 when the database is unreachable.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Database: "connected", Version: h.version}

	if err := h.db.Ping(ctx); err != nil {
		logger.Warn("health_db_unreachable", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	categories, err := h.categories.FindDistinctCategories(ctx)
	if err != nil {
		logger.Warn("health_categories_failed", "error", err)
		resp.Status = "degraded"
	}
	resp.CategoriesCount = len(categories)

	return c.JSON(http.StatusOK, resp)
}
