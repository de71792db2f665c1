package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"porchlight/internal/config"
	"porchlight/internal/identity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-shared-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authTestApp(t *testing.T) (*fiber.App, *identity.User) {
	t.Helper()
	InitMiddleware(&config.Config{AuthJWTSecret: testSecret})

	var seen identity.User
	app := fiber.New()
	app.Get("/protected", AuthRequired, func(c *fiber.Ctx) error {
		seen = CurrentUser(c)
		return c.SendStatus(fiber.StatusOK)
	})
	return app, &seen
}

func TestAuthRequired_MissingHeader(t *testing.T) {
	app, _ := authTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_MalformedHeader(t *testing.T) {
	app, _ := authTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_BadSignature(t *testing.T) {
	app, _ := authTestApp(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "usr_1"})
	signed, err := token.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired_ExtractsIdentity(t *testing.T) {
	app, seen := authTestApp(t)

	signed := signToken(t, jwt.MapClaims{
		"sub":     "usr_42",
		"name":    "Ada Lovelace",
		"email":   "ada@example.com",
		"picture": "https://cdn.example.com/ada.png",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, identity.User{
		ID:    "usr_42",
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Image: "https://cdn.example.com/ada.png",
	}, *seen)
}

func TestAuthRequired_StampsUserContext(t *testing.T) {
	InitMiddleware(&config.Config{AuthJWTSecret: testSecret})

	var got any
	app := fiber.New()
	app.Get("/protected", AuthRequired, func(c *fiber.Ctx) error {
		got = c.UserContext().Value(UserIDKey)
		return c.SendStatus(fiber.StatusOK)
	})

	signed := signToken(t, jwt.MapClaims{
		"sub": "usr_42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "usr_42", got, "downstream log lines read the id from the context")
}

func TestCurrentUser_Anonymous(t *testing.T) {
	app := fiber.New()
	var seen identity.User
	app.Get("/open", func(c *fiber.Ctx) error {
		seen = CurrentUser(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.False(t, seen.Authenticated())
}
