package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/business_site/internal/logging"
	authmw "github.com/Skotchmaster/business_site/internal/middleware/auth"
	"github.com/Skotchmaster/business_site/internal/service"
	"github.com/Skotchmaster/business_site/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		code, msg := statusFor(err)
		l.Warn("login_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
		"accessExp":    res.Tokens.AccessExp,
		"refreshExp":   res.Tokens.RefreshExp,
		"user":         res.User,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("refresh_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		code, msg := statusFor(err)
		l.Warn("refresh_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	return c.JSON(http.StatusOK, transport.TokenResponse{
		AccessToken: pair.AccessToken,
		AccessExp:   pair.AccessExp,
	})
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_profile")

	user, err := h.Svc.Profile(ctx, authmw.UserID(c))
	if err != nil {
		code, msg := statusFor(err)
		if code == http.StatusNotFound {
			msg = "user not found"
		}
		l.Warn("profile_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	return c.JSON(http.StatusOK, user)
}
