// Package handler implements the HTTP endpoints of the booking session
// service.  Handlers assume JWT authentication ran in middleware and
// never own reconciliation or submission logic; they translate between
// HTTP and the session package.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// errUnauthenticated is returned by getUserID when the middleware did
// not inject a usable subject claim.
var errUnauthenticated = errors.New("unauthenticated")

// getUserID extracts the authenticated user's id from the context.  The
// JWT middleware stores the raw "sub" claim, which arrives as a string
// or a JSON number depending on the issuer.
func getUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return 0, errUnauthenticated
		}
		return id, nil
	case float64:
		if v <= 0 {
			return 0, errUnauthenticated
		}
		return uint64(v), nil
	default:
		return 0, errUnauthenticated
	}
}

// CustomValidator adapts go-playground/validator to echo's Validator
// interface so handlers can call c.Validate on bound request bodies.
type CustomValidator struct {
	validate *validator.Validate
}

// NewValidator constructs the validator used by all handlers.
func NewValidator() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
