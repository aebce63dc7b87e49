package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tent-booking/internal/model"
	"github.com/iliyamo/tent-booking/internal/service"
)

// RequireRole aborts with 403 unless the authenticated caller holds one of
// roles.  It must run after JWTAuth.  The role check itself is
// service.RequireRole so routes and services agree on the rule.
func RequireRole(reason string, roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication credentials were not provided."})
			}
			if err := service.RequireRole(id, reason, roles...); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
			}
			return next(c)
		}
	}
}
