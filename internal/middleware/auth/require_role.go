package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/prasetyow/warecash/internal/roles"
)

// RequireRole gates a route group to the given roles. It assumes
// RequireLogin already ran and attached the identity.
func RequireRole(allowed ...roles.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := Identity(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			for _, r := range allowed {
				if claims.Description == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
	}
}
