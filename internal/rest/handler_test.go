//go:build !integration

package rest

import (
	"context"
	"errors"
	"mySmartMarket/business/catalog"
	"mySmartMarket/business/customer"
	"mySmartMarket/business/recommend"
	"mySmartMarket/domain"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakeEngine struct {
	lastReq   recommend.Request
	lastN     int
	resetID   string
	resetCust uint
	session   *domain.Session
	err       error
}

func (f *fakeEngine) Recommend(_ context.Context, req recommend.Request) (*recommend.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	algo, _ := recommend.ParseAlgorithm(req.Algorithm)
	return &recommend.Result{
		Items:     []domain.Recommendation{{ProductID: 42, Score: 0.9}},
		Algorithm: algo,
		Strategy:  algo,
		SessionID: req.SessionID,
	}, nil
}

func (f *fakeEngine) Popular(_ context.Context, n int) ([]domain.Recommendation, error) {
	f.lastN = n
	return []domain.Recommendation{{ProductID: 7}}, f.err
}

func (f *fakeEngine) ResetForCustomer(_ context.Context, sessionID string, customerID uint) error {
	f.resetID, f.resetCust = sessionID, customerID
	return f.err
}

func (f *fakeEngine) Session(_ context.Context, _ string) (*domain.Session, error) {
	return f.session, f.err
}

type fakeManual struct {
	last catalog.ManualRequest
}

func (f *fakeManual) ManualRecommend(_ context.Context, req catalog.ManualRequest) (*catalog.ManualResult, error) {
	f.last = req
	if len(req.Categories) == 0 {
		return nil, catalog.ErrNoCategories
	}
	return &catalog.ManualResult{SessionID: req.SessionID}, nil
}

type fakeActivity struct {
	recorded []uint
}

func (f *fakeActivity) RecordServed(_ context.Context, customerID uint, _ *recommend.Result) {
	f.recorded = append(f.recorded, customerID)
}

func (f *fakeActivity) RecentForCustomer(_ context.Context, customerID uint, _ int) ([]domain.RecommendationEvent, error) {
	return []domain.RecommendationEvent{{CustomerID: customerID, Strategy: "popular"}}, nil
}

func serve(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newRecommendationServer() (*echo.Echo, *fakeEngine, *fakeManual, *fakeActivity) {
	engine, manual, activity := &fakeEngine{}, &fakeManual{}, &fakeActivity{}
	h := NewRecommendationHandler(engine, manual, activity)

	e := echo.New()
	e.POST("/recommendations", h.Recommend)
	e.POST("/recommendations/fallback", h.Fallback)
	e.POST("/recommendations/manual", h.Manual)
	e.POST("/sessions/reset", h.ResetSession)
	e.GET("/sessions/:id", h.GetSession)
	return e, engine, manual, activity
}

func TestRecommendHandler(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		headers     map[string]string
		wantCode    int
		wantSession string
		wantN       int
	}{
		{name: "defaults", body: `{"customer_id":3}`, wantCode: http.StatusOK, wantSession: "default", wantN: 5},
		{name: "header session", body: `{"customer_id":3,"n":2}`, headers: map[string]string{HeaderSessionID: "hdr"}, wantCode: http.StatusOK, wantSession: "hdr", wantN: 2},
		{name: "body session wins", body: `{"session_id":"body","customer_id":3}`, headers: map[string]string{HeaderSessionID: "hdr"}, wantCode: http.StatusOK, wantSession: "body", wantN: 5},
		{name: "alias algorithm", body: `{"customer_id":3,"algorithm":"cf"}`, wantCode: http.StatusOK, wantSession: "default", wantN: 5},
		{name: "missing customer", body: `{"n":3}`, wantCode: http.StatusBadRequest},
		{name: "n too large", body: `{"customer_id":3,"n":101}`, wantCode: http.StatusBadRequest},
		{name: "unknown algorithm", body: `{"customer_id":3,"algorithm":"magic"}`, wantCode: http.StatusBadRequest},
		{name: "malformed", body: `{"customer_id":`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, engine, _, activity := newRecommendationServer()
			rec := serve(e, http.MethodPost, "/recommendations", tt.body, tt.headers)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				if len(activity.recorded) != 0 {
					t.Fatal("rejected request was logged as served")
				}
				return
			}
			if engine.lastReq.SessionID != tt.wantSession || engine.lastReq.N != tt.wantN || engine.lastReq.CustomerID != 3 {
				t.Fatalf("engine request = %+v", engine.lastReq)
			}
			if !strings.Contains(rec.Body.String(), `"product_id":42`) {
				t.Fatalf("body = %s", rec.Body.String())
			}
			if len(activity.recorded) != 1 || activity.recorded[0] != 3 {
				t.Fatalf("recorded = %v", activity.recorded)
			}
		})
	}
}

func TestRecommendHandlerErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid customer", recommend.ErrInvalidCustomer, http.StatusBadRequest},
		{"store failure", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, engine, _, _ := newRecommendationServer()
			engine.err = tt.err
			rec := serve(e, http.MethodPost, "/recommendations", `{"customer_id":3}`, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestFallbackHandler(t *testing.T) {
	e, engine, _, _ := newRecommendationServer()

	rec := serve(e, http.MethodPost, "/recommendations/fallback", `{}`, nil)
	if rec.Code != http.StatusOK || engine.lastN != 5 {
		t.Fatalf("code = %d, n = %d", rec.Code, engine.lastN)
	}
	rec = serve(e, http.MethodPost, "/recommendations/fallback", `{"n":0}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	rec = serve(e, http.MethodPost, "/recommendations/fallback", `{"n":500}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestManualHandler(t *testing.T) {
	e, _, manual, _ := newRecommendationServer()

	rec := serve(e, http.MethodPost, "/recommendations/manual", `{"customer_id":2,"categories":["Fashion"]}`, map[string]string{HeaderSessionID: "m"})
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d: %s", rec.Code, rec.Body.String())
	}
	if manual.last.SessionID != "m" || manual.last.N != 5 || manual.last.CustomerID != 2 {
		t.Fatalf("manual request = %+v", manual.last)
	}

	for _, body := range []string{`{"customer_id":2}`, `{"customer_id":2,"categories":[]}`, `{"categories":["Fashion"]}`} {
		if rec := serve(e, http.MethodPost, "/recommendations/manual", body, nil); rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: code = %d, want 400", body, rec.Code)
		}
	}
}

func TestSessionHandlers(t *testing.T) {
	e, engine, _, _ := newRecommendationServer()

	rec := serve(e, http.MethodPost, "/sessions/reset", `{"session_id":"s9","customer_id":4}`, nil)
	if rec.Code != http.StatusOK || engine.resetID != "s9" || engine.resetCust != 4 {
		t.Fatalf("code = %d reset = %q/%d", rec.Code, engine.resetID, engine.resetCust)
	}
	if rec := serve(e, http.MethodPost, "/sessions/reset", `{}`, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}

	if rec := serve(e, http.MethodGet, "/sessions/s9", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
	id := uint(4)
	engine.session = &domain.Session{ID: "s9", CustomerID: &id, RecommendedIDs: []uint64{1}}
	rec = serve(e, http.MethodGet, "/sessions/s9", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"recommended_ids":[1]`) {
		t.Fatalf("code = %d body = %s", rec.Code, rec.Body.String())
	}
}

type fakeCustomerService struct{}

func (fakeCustomerService) SearchByPhone(_ context.Context, _, phone string) (*customer.SearchResult, error) {
	if phone == "" {
		return nil, customer.ErrInvalidPhone
	}
	if phone != "0811" {
		return nil, domain.ErrCustomerNotFound
	}
	return &customer.SearchResult{Customer: domain.Customer{ID: 1, Name: "Ana"}}, nil
}

func (fakeCustomerService) GetPurchaseHistory(_ context.Context, id uint) ([]domain.PurchaseDetail, error) {
	if id != 1 {
		return nil, domain.ErrCustomerNotFound
	}
	return []domain.PurchaseDetail{{CustomerID: 1, ProductID: 5}}, nil
}

func (fakeCustomerService) GetStats(_ context.Context, id uint) (domain.CustomerStats, error) {
	if id != 1 {
		return domain.CustomerStats{}, domain.ErrCustomerNotFound
	}
	return domain.CustomerStats{TotalPurchases: 3, TotalSpent: 99.5}, nil
}

func (fakeCustomerService) GetProfile(_ context.Context, id uint) (*domain.UserProfile, error) {
	if id != 1 {
		return nil, nil
	}
	return &domain.UserProfile{TotalPurchases: 3}, nil
}

func TestCustomerHandler(t *testing.T) {
	h := NewCustomerHandler(fakeCustomerService{}, &fakeActivity{})
	e := echo.New()
	e.GET("/customers/search", h.Search)
	e.GET("/customers/:id/purchases", h.GetPurchases)
	e.GET("/customers/:id/stats", h.GetStats)
	e.GET("/customers/:id/profile", h.GetProfile)
	e.GET("/customers/:id/recommendations", h.GetRecentRecommendations)

	tests := []struct {
		name     string
		path     string
		wantCode int
		contains string
	}{
		{"search found", "/customers/search?phone=0811", http.StatusOK, `"name":"Ana"`},
		{"search missing", "/customers/search?phone=0999", http.StatusNotFound, ""},
		{"search blank", "/customers/search", http.StatusBadRequest, ""},
		{"purchases", "/customers/1/purchases", http.StatusOK, `"product_id":5`},
		{"purchases unknown", "/customers/2/purchases", http.StatusNotFound, ""},
		{"stats", "/customers/1/stats", http.StatusOK, `"total_spent":99.5`},
		{"bad id", "/customers/abc/stats", http.StatusBadRequest, ""},
		{"zero id", "/customers/0/stats", http.StatusBadRequest, ""},
		{"profile", "/customers/1/profile", http.StatusOK, `"total_purchases":3`},
		{"cold start profile", "/customers/3/profile", http.StatusOK, ""},
		{"recent", "/customers/1/recommendations?limit=5", http.StatusOK, `"strategy":"popular"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, tt.path, "", nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.contains != "" && !strings.Contains(rec.Body.String(), tt.contains) {
				t.Fatalf("body %s missing %s", rec.Body.String(), tt.contains)
			}
		})
	}
}

type fakeCategoryService struct {
	lastMin, lastMax float64
}

func (f *fakeCategoryService) GetCategories(context.Context) ([]domain.CategorySummary, error) {
	return []domain.CategorySummary{{Category: "Fashion", ProductCount: 3}}, nil
}

func (f *fakeCategoryService) GetProductsByCategory(_ context.Context, category string, minPrice, maxPrice float64) ([]domain.ProductStats, error) {
	f.lastMin, f.lastMax = minPrice, maxPrice
	if strings.TrimSpace(category) == "" {
		return nil, catalog.ErrInvalidCategory
	}
	return []domain.ProductStats{{ProductID: 8, Category: category}}, nil
}

func TestCategoryHandler(t *testing.T) {
	svc := &fakeCategoryService{}
	h := NewCategoryHandler(svc)
	e := echo.New()
	e.GET("/categories", h.GetAllCategories)
	e.GET("/categories/:name/products", h.GetProductsByCategory)

	if rec := serve(e, http.MethodGet, "/categories", "", nil); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"product_count":3`) {
		t.Fatalf("categories: %d %s", rec.Code, rec.Body.String())
	}

	rec := serve(e, http.MethodGet, "/categories/Fashion/products?min_price=10&max_price=50", "", nil)
	if rec.Code != http.StatusOK || svc.lastMin != 10 || svc.lastMax != 50 {
		t.Fatalf("products: %d min=%v max=%v", rec.Code, svc.lastMin, svc.lastMax)
	}
	if rec := serve(e, http.MethodGet, "/categories/Fashion/products?min_price=abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad price: %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/categories/Fashion/products?max_price=-1", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("negative price: %d", rec.Code)
	}
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeLister struct{}

func (fakeLister) FindDistinctCategories(context.Context) ([]string, error) {
	return []string{"Electronics", "Fashion"}, nil
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		wantCode int
		contains string
	}{
		{"healthy", nil, http.StatusOK, `"categories_count":2`},
		{"db down", errors.New("refused"), http.StatusServiceUnavailable, `"database":"unreachable"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(fakePinger{err: tt.pingErr}, fakeLister{}, "test")
			e := echo.New()
			e.GET("/health", h.Health)

			rec := serve(e, http.MethodGet, "/health", "", nil)
			if rec.Code != tt.wantCode || !strings.Contains(rec.Body.String(), tt.contains) {
				t.Fatalf("code = %d body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}
