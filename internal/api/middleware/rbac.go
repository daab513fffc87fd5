package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-panel/internal/api/metrics"
	"github.com/99minutos/admin-panel/internal/core/domain"
)

// RequireOperation rejects callers whose role does not meet the minimum role of op.
// It must run after Auth.
func RequireOperation(op domain.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if !domain.CanPerform(principal.Role, op) {
				metrics.AuthorizationDeniedTotal.WithLabelValues(string(op)).Inc()
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
			}
			return next(c)
		}
	}
}
