package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/business_site/internal/service"
)

// statusFor maps service errors onto response codes and client messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "invalid body"
	case errors.Is(err, service.ErrSelfDelete):
		return http.StatusBadRequest, "cannot delete your own account"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, "invalid or expired token"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, "already exists or still in use"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
