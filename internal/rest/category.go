package rest

import (
	"context"
	"mySmartMarket/domain"
	"mySmartMarket/pkg/logger"
	"net/http"
	"strconv"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type CategoryService interface {
	GetCategories(ctx context.Context) ([]domain.CategorySummary, error)
	GetProductsByCategory(ctx context.Context, category string, minPrice, maxPrice float64) ([]domain.ProductStats, error)
}

type CategoryHandler struct {
	categoryService CategoryService
	timeout         time.Duration
}

func NewCategoryHandler(categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		timeout:         10 * time.Second,
	}
}

func (h *CategoryHandler) GetAllCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	categories, err := h.categoryService.GetCategories(ctx)
	if err != nil {
		logger.Error("Failed to find all categories", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(categories))
}

func parsePrice(raw string) (float64, bool) {
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// GET /api/v1/categories/:name/products?min_price=&max_price=
func (h *CategoryHandler) GetProductsByCategory(c echo.Context) error {
	minPrice, ok := parsePrice(c.QueryParam("min_price"))
	if !ok {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid min_price"})
	}
	maxPrice, ok := parsePrice(c.QueryParam("max_price"))
	if !ok {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid max_price"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.categoryService.GetProductsByCategory(ctx, c.Param("name"), minPrice, maxPrice)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}
