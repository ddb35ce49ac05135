package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/business_site/internal/tokens"
)

const (
	CtxUserID = "user_id"
	CtxUser   = "user"
)

func ExtractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setUserContext(c echo.Context, claims *tokens.Claims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxUser, claims.User)
}

// UserID returns the account id of the authenticated caller.
func UserID(c echo.Context) string {
	id, _ := c.Get(CtxUserID).(string)
	return id
}

// CurrentUser returns the identity snapshot from the caller's token.
func CurrentUser(c echo.Context) (tokens.User, bool) {
	u, ok := c.Get(CtxUser).(tokens.User)
	return u, ok
}
