package rest

import (
	"errors"
	"mySmartMarket/business/activity"
	"mySmartMarket/business/catalog"
	"mySmartMarket/business/customer"
	"mySmartMarket/business/recommend"
	"mySmartMarket/domain"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// HeaderSessionID carries the caller's session when the body does not.
const HeaderSessionID = "X-Session-ID"

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// statusFor maps service errors to HTTP status codes. Anything the caller
// cannot fix is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, recommend.ErrInvalidCustomer),
		errors.Is(err, recommend.ErrInvalidLimit),
		errors.Is(err, customer.ErrInvalidPhone),
		errors.Is(err, customer.ErrInvalidCustomer),
		errors.Is(err, catalog.ErrInvalidCategory),
		errors.Is(err, catalog.ErrNoCategories),
		errors.Is(err, catalog.ErrInvalidPriceRange),
		errors.Is(err, activity.ErrInvalidCustomer):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, err error) error {
	return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
}

// sessionID prefers the body value, then the header, then the default session.
func sessionID(c echo.Context, fromBody string) string {
	if s := strings.TrimSpace(fromBody); s != "" {
		return s
	}
	if s := strings.TrimSpace(c.Request().Header.Get(HeaderSessionID)); s != "" {
		return s
	}
	return recommend.DefaultSessionID
}

// newValidator registers the algorithm tag on top of the stock validator.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("algorithm", func(fl validator.FieldLevel) bool {
		_, ok := recommend.ParseAlgorithm(fl.Field().String())
		return ok
	})
	return v
}
