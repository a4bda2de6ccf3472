package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	httpUtil "github.com/lnky-dev/lnky/internal/http/util"
)

const (
	// SessionCookie is the cookie carrying the session token.
	SessionCookie = "auth_token"
	// UserIDKey is the locals key holding the authenticated user id.
	UserIDKey = "user_id"
)

// Auth validates the session token (Authorization bearer or cookie) and
// stores the owner id in locals. Requests without a valid session are
// rejected before any handler or store access runs.
func Auth(sessions *httpUtil.SessionSigner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			token = c.Cookies(SessionCookie)
		}
		if token == "" {
			return unauthorized(c)
		}

		userID, err := sessions.Validate(token)
		if err != nil {
			return unauthorized(c)
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id set by Auth, or "".
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(UserIDKey).(string); ok {
		return id
	}
	return ""
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}
