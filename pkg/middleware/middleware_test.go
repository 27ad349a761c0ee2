package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"homebudget/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubAuthenticator struct {
	claims *auth.Claims
	err    error
	seen   string
}

func (s *stubAuthenticator) AuthenticateRequest(_ context.Context, token string) (*auth.Claims, error) {
	s.seen = token
	return s.claims, s.err
}

func newProtectedApp(a Authenticator) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(a, zap.NewNop()), func(c *fiber.Ctx) error {
		claims, ok := Claims(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.JSON(fiber.Map{"user_id": claims.UserID, "local": c.Locals(LocalUserID)})
	})
	return app
}

func errorBody(t *testing.T, body io.Reader) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out["error"]
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		err        error
		wantStatus int
		wantError  string
	}{
		{"missing header", "", nil, fiber.StatusUnauthorized, "Authorization token required"},
		{"revoked", "Bearer tok", auth.ErrTokenRevoked, fiber.StatusUnauthorized, "Token has been revoked"},
		{"invalid", "Bearer tok", auth.ErrInvalidToken, fiber.StatusUnauthorized, "Invalid or expired token"},
		{"store failure", "Bearer tok", errors.New("db down"), fiber.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(&stubAuthenticator{err: tt.err})
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantError, errorBody(t, resp.Body))
		})
	}
}

func TestAuthMiddlewareStoresClaims(t *testing.T) {
	stub := &stubAuthenticator{claims: &auth.Claims{UserID: "u-1"}}
	app := newProtectedApp(stub)

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "bearer abc.def")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc.def", stub.seen, "scheme is case-insensitive and stripped")

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u-1", body["user_id"])
	assert.Equal(t, "u-1", body["local"])
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		_, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
		require.NoError(t, err)
	}

	entries := logs.All()
	require.Len(t, entries, 3)

	wantLevels := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	wantStatus := []int64{200, 404, 500}
	for i, e := range entries {
		fields := e.ContextMap()
		assert.Equal(t, wantLevels[i], e.Level)
		assert.Equal(t, wantStatus[i], fields["status"])
		assert.NotEmpty(t, fields["request_id"])
	}
}
