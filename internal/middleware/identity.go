package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tent-booking/internal/model"
)

// Context keys set by JWTAuth.
const (
	ctxIdentity = "identity"
	ctxUserID   = "user_id"
	ctxRole     = "role"
)

// IdentityFrom returns the authenticated caller stored by JWTAuth.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(ctxIdentity).(model.Identity)
	return id, ok && id.UserID != 0
}

func setIdentity(c echo.Context, id model.Identity) {
	c.Set(ctxIdentity, id)
	c.Set(ctxUserID, strconv.FormatUint(id.UserID, 10))
	c.Set(ctxRole, string(id.Role))
}

// userID is the caller's id as a string, or "anon" before authentication.
func userID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
