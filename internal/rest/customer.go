package rest

import (
	"context"
	"mySmartMarket/business/customer"
	"mySmartMarket/domain"
	"net/http"
	"strconv"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type CustomerService interface {
	SearchByPhone(ctx context.Context, sessionID, phone string) (*customer.SearchResult, error)
	GetPurchaseHistory(ctx context.Context, id uint) ([]domain.PurchaseDetail, error)
	GetStats(ctx context.Context, id uint) (domain.CustomerStats, error)
	GetProfile(ctx context.Context, id uint) (*domain.UserProfile, error)
}

type ActivityReader interface {
	RecentForCustomer(ctx context.Context, customerID uint, limit int) ([]domain.RecommendationEvent, error)
}

type CustomerHandler struct {
	customerService CustomerService
	activity        ActivityReader
	timeout         time.Duration
}

func NewCustomerHandler(customerService CustomerService, activity ActivityReader) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		activity:        activity,
		timeout:         10 * time.Second,
	}
}

func customerIDParam(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// GET /api/v1/customers/search?phone=
func (h *CustomerHandler) Search(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.customerService.SearchByPhone(ctx, sessionID(c, c.QueryParam("session_id")), c.QueryParam("phone"))
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}

func (h *CustomerHandler) GetPurchases(c echo.Context) error {
	id, ok := customerIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid customer id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	purchases, err := h.customerService.GetPurchaseHistory(ctx, id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(purchases))
}

func (h *CustomerHandler) GetStats(c echo.Context) error {
	id, ok := customerIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid customer id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.customerService.GetStats(ctx, id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}

// GetProfile answers with a null data field for cold-start customers.
func (h *CustomerHandler) GetProfile(c echo.Context) error {
	id, ok := customerIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid customer id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	profile, err := h.customerService.GetProfile(ctx, id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(profile))
}

// GET /api/v1/customers/:id/recommendations?limit=
func (h *CustomerHandler) GetRecentRecommendations(c echo.Context) error {
	id, ok := customerIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid customer id"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	events, err := h.activity.RecentForCustomer(ctx, id, limit)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(events))
}
