package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/org-directory/internal/domain"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrInvalidCredentials)

	_, err = HashPassword("", bcrypt.MinCost)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken(domain.Operator{Email: "root@corp.io", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "root@corp.io", claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := tm.GenerateToken(domain.Operator{Email: "a@b.c", Role: domain.RoleViewer})
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestOperatorDirectoryLookup(t *testing.T) {
	dir := NewOperatorDirectory([]domain.Operator{{Email: " Root@Corp.io ", Role: domain.RoleAdmin}})

	op, ok := dir.Lookup("ROOT@corp.io")
	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, op.Role)
	assert.Equal(t, 1, dir.Len())

	_, ok = (*OperatorDirectory)(nil).Lookup("x")
	assert.False(t, ok)
}

func newGuardedApp(tm *TokenManager, dir *OperatorDirectory) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	mw := NewAuthMiddleware(tm, dir)
	app.Use(mw.Handle, WriteGuard())
	ok := func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) }
	app.Get("/things", ok)
	app.Post("/things", ok)
	return app
}

func TestWriteGuard(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	admin := domain.Operator{Email: "admin@corp.io", Role: domain.RoleAdmin}
	viewer := domain.Operator{Email: "viewer@corp.io", Role: domain.RoleViewer}
	app := newGuardedApp(tm, NewOperatorDirectory([]domain.Operator{admin, viewer}))

	adminToken, _, err := tm.GenerateToken(admin)
	require.NoError(t, err)
	viewerToken, _, err := tm.GenerateToken(viewer)
	require.NoError(t, err)
	ghostToken, _, err := tm.GenerateToken(domain.Operator{Email: "ghost@corp.io", Role: domain.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		header string
		status int
	}{
		{"no header", http.MethodGet, "", http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "Basic abc", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "Bearer abc", http.StatusUnauthorized},
		{"unknown operator", http.MethodGet, "Bearer " + ghostToken, http.StatusUnauthorized},
		{"viewer reads", http.MethodGet, "Bearer " + viewerToken, http.StatusOK},
		{"viewer writes", http.MethodPost, "Bearer " + viewerToken, http.StatusForbidden},
		{"admin writes", http.MethodPost, "Bearer " + adminToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/things", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
