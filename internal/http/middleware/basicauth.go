package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"blogapp/internal/config"
)

// BasicAuthRealm is the realm reported in the WWW-Authenticate challenge.
const BasicAuthRealm = "blogapp"

// BasicAuth guards mutating routes with the static credential pair from config.
//
// Behavior:
// - Missing or invalid credentials produce a 401 challenge with the standard
//   JSON error envelope.
// - Comparison is constant-time.
// - Fails closed: when no credentials are configured, every request is rejected.
func BasicAuth(cfg config.AuthConfig) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Realm: BasicAuthRealm,
		Authorizer: func(user, pass string) bool {
			if cfg.Username == "" || cfg.Password == "" {
				return false
			}
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.Username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.Password)) == 1
			return userMatch && passMatch
		},
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="`+BasicAuthRealm+`"`)
			rid, _ := c.Locals(RequestIDLocalKey).(string)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"request_id": rid,
				"error": fiber.Map{
					"code":    "UNAUTHORIZED",
					"message": "authentication required",
				},
			})
		},
	})
}
