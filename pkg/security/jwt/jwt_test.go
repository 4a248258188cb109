package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/tasktracker/pkg/auth"
)

func testUser() auth.User {
	return auth.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com", Role: auth.RoleEmployee}
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	g := NewGenerator("secret", "task-tracker", time.Hour)
	u := testUser()

	tok, err := g.Generate(context.Background(), u)
	require.NoError(t, err)

	id, err := g.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.ID)
	assert.Equal(t, u.Email, id.Email)
	assert.Equal(t, auth.RoleEmployee, id.Role)
}

func TestVerifyRejects(t *testing.T) {
	ctx := context.Background()
	u := testUser()
	good := NewGenerator("secret", "task-tracker", time.Hour)

	expired := NewGenerator("secret", "task-tracker", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredTok, err := expired.Generate(ctx, u)
	require.NoError(t, err)

	otherSecretTok, err := NewGenerator("other", "task-tracker", time.Hour).Generate(ctx, u)
	require.NoError(t, err)

	otherIssuerTok, err := NewGenerator("secret", "someone-else", time.Hour).Generate(ctx, u)
	require.NoError(t, err)

	cases := map[string]string{
		"malformed":    "not.a.jwt",
		"empty":        "",
		"expired":      expiredTok,
		"wrong secret": otherSecretTok,
		"wrong issuer": otherIssuerTok,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := good.Verify(ctx, tok)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer   abc "))
	assert.Equal(t, "abc", bearerToken("abc"))
	assert.Equal(t, "", bearerToken("   "))
}

type stubAuthenticator struct {
	id  auth.Identity
	err error
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	return s.id, s.err
}

func newProtectedApp(authn Authenticator, roles ...auth.Role) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{NewAuthMiddleware(authn)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		id, _ := IdentityFrom(c)
		return c.SendString(string(id.Role))
	})
	app.Get("/p", handlers...)
	return app
}

func TestMiddleware(t *testing.T) {
	employee := auth.Identity{ID: uuid.New(), Role: auth.RoleEmployee}

	t.Run("missing header", func(t *testing.T) {
		app := newProtectedApp(stubAuthenticator{id: employee})
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/p", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		app := newProtectedApp(stubAuthenticator{err: auth.ErrInvalidToken})
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer nope")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("role mismatch", func(t *testing.T) {
		app := newProtectedApp(stubAuthenticator{id: employee}, auth.RoleAdmin)
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer ok")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("allowed", func(t *testing.T) {
		app := newProtectedApp(stubAuthenticator{id: employee}, auth.RoleEmployee, auth.RoleAdmin)
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		req.Header.Set("Authorization", "Bearer ok")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
