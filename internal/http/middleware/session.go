package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// SessionCookieName carries the session token for browser clients.
	SessionCookieName = "catbox_session"
	// UserIDLocalKey is where RequireSession stores the authenticated user id.
	UserIDLocalKey = "user_id"
)

// SessionVerifier resolves a session token to a user id.
type SessionVerifier interface {
	RequireSession(ctx context.Context, token string) (string, error)
}

// RequireSession rejects requests without a valid session with 401 and
// otherwise exposes the user id under UserIDLocalKey.
func RequireSession(v SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := v.RequireSession(c.UserContext(), SessionToken(c))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		c.Locals(UserIDLocalKey, uid)
		return c.Next()
	}
}

// SessionToken reads the token from "Authorization: Bearer" or, failing that,
// the session cookie.
func SessionToken(c *fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); h != "" {
		const prefix = "bearer "
		if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
	}
	return c.Cookies(SessionCookieName)
}

// UserIDFromCtx returns the id stored by RequireSession.
func UserIDFromCtx(c *fiber.Ctx) string {
	uid, _ := c.Locals(UserIDLocalKey).(string)
	return uid
}
