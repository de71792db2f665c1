package middleware

import (
	"context"
	"strings"

	"porchlight/internal/config"
	"porchlight/internal/identity"
	"porchlight/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// UserLocal is the Fiber locals key under which AuthRequired stores the
// authenticated identity.User.
const UserLocal = "user"

// AuthRequired enforces authentication for protected routes. It validates
// the bearer token issued by the external auth provider and stores the
// resulting identity capability in locals. No credential check happens
// here beyond the token signature; the provider is trusted completely.
func AuthRequired(c *fiber.Ctx) error {
	user, err := userFromRequest(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}

	c.Locals(UserLocal, user)
	// Propagate the caller's id into the request context so log lines
	// emitted downstream carry it.
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, user.ID))
	return c.Next()
}

// CurrentUser returns the identity stored by AuthRequired, or the zero
// (anonymous) identity when the route was not protected.
func CurrentUser(c *fiber.Ctx) identity.User {
	if u, ok := c.Locals(UserLocal).(identity.User); ok {
		return u
	}
	return identity.User{}
}

func userFromRequest(c *fiber.Ctx) (identity.User, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return identity.User{}, models.NewUnauthenticatedError("Authorization header required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return identity.User{}, models.NewUnauthenticatedError("Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.AuthJWTSecret), nil
	})
	if err != nil || !token.Valid {
		return identity.User{}, models.NewUnauthenticatedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.User{}, models.NewUnauthenticatedError("Invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return identity.User{}, models.NewUnauthenticatedError("Invalid token structure - missing subject")
	}

	user := identity.User{ID: sub}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if image, ok := claims["picture"].(string); ok {
		user.Image = image
	}

	return user, nil
}
