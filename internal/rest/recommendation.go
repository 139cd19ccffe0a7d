package rest

import (
	"context"
	"mySmartMarket/business/catalog"
	"mySmartMarket/business/recommend"
	"mySmartMarket/domain"
	"mySmartMarket/pkg/logger"
	"mySmartMarket/pkg/metrics"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const defaultRecommendationCount = 5

type (
	RecommendationHandler struct {
		engine    RecommendationEngine
		manual    ManualRecommender
		activity  ActivityRecorder
		validator *validator.Validate
		timeout   time.Duration
	}

	RecommendationEngine interface {
		Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error)
		Popular(ctx context.Context, n int) ([]domain.Recommendation, error)
		ResetForCustomer(ctx context.Context, sessionID string, customerID uint) error
		Session(ctx context.Context, sessionID string) (*domain.Session, error)
	}

	ManualRecommender interface {
		ManualRecommend(ctx context.Context, req catalog.ManualRequest) (*catalog.ManualResult, error)
	}

	ActivityRecorder interface {
		RecordServed(ctx context.Context, customerID uint, res *recommend.Result)
	}

	RecommendRequest struct {
		SessionID  string `json:"session_id"`
		CustomerID uint   `json:"customer_id" validate:"required,min=1"`
		N          int    `json:"n" validate:"omitempty,min=1,max=100"`
		Algorithm  string `json:"algorithm" validate:"omitempty,algorithm"`
	}

	FallbackRequest struct {
		N int `json:"n" validate:"omitempty,min=1,max=100"`
	}

	ManualRecommendRequest struct {
		SessionID  string   `json:"session_id"`
		CustomerID uint     `json:"customer_id" validate:"required,min=1"`
		Categories []string `json:"categories" validate:"required,min=1,dive,required"`
		N          int      `json:"n" validate:"omitempty,min=1,max=100"`
	}

	ResetSessionRequest struct {
		SessionID  string `json:"session_id"`
		CustomerID uint   `json:"customer_id" validate:"required,min=1"`
	}
)

func NewRecommendationHandler(engine RecommendationEngine, manual ManualRecommender, activity ActivityRecorder) *RecommendationHandler {
	return &RecommendationHandler{
		engine:    engine,
		manual:    manual,
		activity:  activity,
		validator: newValidator(),
		timeout:   10 * time.Second,
	}
}

// POST /api/v1/recommendations
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecommendLatency.Observe(time.Since(start).Seconds())
	}()

	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		metrics.RecommendRequests.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		metrics.RecommendRequests.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if req.N == 0 {
		req.N = defaultRecommendationCount
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.engine.Recommend(ctx, recommend.Request{
		SessionID:  sessionID(c, req.SessionID),
		CustomerID: req.CustomerID,
		N:          req.N,
		Algorithm:  req.Algorithm,
	})
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		logger.Error("recommend_failed", "trace_id", recommend.TraceIDFromContext(ctx), "customer_id", req.CustomerID, "error", err)
		return errorJSON(c, err)
	}

	h.activity.RecordServed(ctx, req.CustomerID, res)

	outcome := "ok"
	if res.Strategy != res.Algorithm {
		outcome = "fallback"
	}
	metrics.RecommendRequests.WithLabelValues(outcome).Inc()

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}

// POST /api/v1/recommendations/fallback
func (h *RecommendationHandler) Fallback(c echo.Context) error {
	var req FallbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if req.N == 0 {
		req.N = defaultRecommendationCount
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	items, err := h.engine.Popular(ctx, req.N)
	if err != nil {
		logger.Error("fallback_failed", "trace_id", recommend.TraceIDFromContext(ctx), "error", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(items))
}

// POST /api/v1/recommendations/manual
func (h *RecommendationHandler) Manual(c echo.Context) error {
	var req ManualRecommendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if req.N == 0 {
		req.N = defaultRecommendationCount
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.manual.ManualRecommend(ctx, catalog.ManualRequest{
		SessionID:  sessionID(c, req.SessionID),
		CustomerID: req.CustomerID,
		Categories: req.Categories,
		N:          req.N,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
}

// POST /api/v1/sessions/reset
func (h *RecommendationHandler) ResetSession(c echo.Context) error {
	var req ResetSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	id := sessionID(c, req.SessionID)
	if err := h.engine.ResetForCustomer(ctx, id, req.CustomerID); err != nil {
		logger.Error("session_reset_failed", "trace_id", recommend.TraceIDFromContext(ctx), "session_id", id, "error", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"session_id":  id,
		"customer_id": req.CustomerID,
	}))
}

// GET /api/v1/sessions/:id
func (h *RecommendationHandler) GetSession(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	session, err := h.engine.Session(ctx, c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "session not found"})
	}
	session.Profiles = nil

	return c.JSON(http.StatusOK, fres.Response.StatusOK(session))
}
