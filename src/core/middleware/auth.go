package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Camier/searxng-convivial-instance/src/core/config"
	"github.com/Camier/searxng-convivial-instance/src/core/helpers"
)

// Protected middleware for validating JWT tokens issued by the auth
// service. Claims are authoritative; there is no fallback identity. The
// token is also accepted as a query parameter for websocket upgrades.
func Protected() fiber.Handler {
	jwtSecret := config.Config("JWT_SECRET")
	if jwtSecret == "" {
		panic("JWT_SECRET is not set in the environment variables") // Panic to prevent startup
	}

	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{Key: []byte(jwtSecret)},
		TokenLookup:  "header:Authorization,query:token",
		AuthScheme:   "Bearer",
		ErrorHandler: jwtError,
		SuccessHandler: func(c *fiber.Ctx) error {
			// Extract user claims and attach identity to the context
			token := c.Locals("user").(*jwt.Token)
			claims := token.Claims.(jwt.MapClaims)
			userID, ok := claims["sub"].(string)
			if !ok || userID == "" {
				return helpers.HandleError(c, fiber.StatusUnauthorized, "User ID missing in token", nil)
			}
			c.Locals("user_id", userID)
			if username, ok := claims["username"].(string); ok {
				c.Locals("username", username)
			}
			if role, ok := claims["role"].(string); ok {
				c.Locals("role", role)
			}
			return c.Next()
		},
	})
}

// jwtError handles JWT-related errors
func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return helpers.HandleError(c, fiber.StatusBadRequest, "Missing or malformed JWT", err)
	}
	return helpers.HandleError(c, fiber.StatusUnauthorized, "Invalid or expired JWT", err)
}
