package httpserver

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/business_site/internal/logging"
	authmw "github.com/Skotchmaster/business_site/internal/middleware/auth"
	"github.com/Skotchmaster/business_site/internal/service"
	"github.com/Skotchmaster/business_site/internal/transport"
)

type UsersHTTP struct {
	Svc *service.UserService
}

func (h *UsersHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_users.list")

	users, err := h.Svc.List(ctx)
	if err != nil {
		l.Error("list_users_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UsersHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_users.create")

	var req transport.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("create_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Create(ctx, req)
	if err != nil {
		code, msg := statusFor(err)
		if code == http.StatusConflict {
			msg = "user already exists"
		}
		l.Warn("create_user_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	l.Info("user_created", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *UsersHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_users.update")

	var req transport.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("update_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	email, err := emailParam(c)
	if err != nil {
		l.Warn("update_user_error", "status", 400, "reason", "bad email in path", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	user, err := h.Svc.Update(ctx, email, req)
	if err != nil {
		code, msg := statusFor(err)
		switch code {
		case http.StatusNotFound:
			msg = "user not found"
		case http.StatusConflict:
			msg = "user already exists"
		}
		l.Warn("update_user_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	l.Info("user_updated", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *UsersHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_users.delete")

	email, err := emailParam(c)
	if err != nil {
		l.Warn("delete_user_error", "status", 400, "reason", "bad email in path", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid email")
	}

	caller, _ := authmw.CurrentUser(c)
	if err := h.Svc.Delete(ctx, email, caller.Email); err != nil {
		code, msg := statusFor(err)
		if code == http.StatusNotFound {
			msg = "user not found"
		}
		l.Warn("delete_user_failed", "status", code, "error", err)
		return echo.NewHTTPError(code, msg)
	}

	l.Info("user_deleted")
	return c.NoContent(http.StatusNoContent)
}

// emailParam returns the :email path segment decoded. The router matches on
// the raw path, so "a%40b.com" arrives still escaped.
func emailParam(c echo.Context) (string, error) {
	return url.PathUnescape(c.Param("email"))
}
