package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/business_site/internal/logging"
	"github.com/Skotchmaster/business_site/internal/middleware/metrics"
	"github.com/Skotchmaster/business_site/internal/tokens"
)

var (
	ErrMissingToken          = echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	ErrInvalidOrExpiredToken = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	ErrForbidden             = echo.NewHTTPError(http.StatusForbidden, "admin access required")
)

type Verifier interface {
	Verify(ctx context.Context, token string) (*tokens.Claims, bool)
}

type ValidatorFunc func(claims *tokens.Claims) error

type Middleware struct {
	Verifier Verifier
}

func New(v Verifier) *Middleware {
	return &Middleware{Verifier: v}
}

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *Middleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "auth")

		token := ExtractBearer(c.Request().Header.Get(echo.HeaderAuthorization))
		if token == "" {
			metrics.RecordAuthFailure("missing_token")
			l.Warn("auth_rejected", "status", 401, "reason", "missing token")
			return ErrMissingToken
		}

		claims, ok := m.Verifier.Verify(ctx, token)
		if !ok || claims.TokenType != tokens.AccessToken || claims.Subject == "" {
			metrics.RecordAuthFailure("invalid_token")
			l.Warn("auth_rejected", "status", 401, "reason", "invalid or expired token")
			return ErrInvalidOrExpiredToken
		}

		if validator != nil {
			if err := validator(claims); err != nil {
				return err
			}
		}

		setUserContext(c, claims)
		return next(c)
	}
}
