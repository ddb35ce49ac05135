package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/business_site/internal/middleware/metrics"
	"github.com/Skotchmaster/business_site/internal/tokens"
)

// RequireAdmin lets through only verified access tokens whose snapshot has
// isAdmin set. Token problems stay 401; a missing privilege is 403.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.Claims) error {
		if !claims.User.IsAdmin {
			metrics.RecordAuthFailure("forbidden")
			return ErrForbidden
		}
		return nil
	})
}
