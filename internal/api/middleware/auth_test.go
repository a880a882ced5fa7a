package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/commerce-api/internal/core/domain"
)

type stubVerifier struct {
	identity domain.Identity
	err      error
	gotToken string
}

func (s *stubVerifier) VerifyToken(_ context.Context, token string) (domain.Identity, error) {
	s.gotToken = token
	return s.identity, s.err
}

func newContext(authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &stubVerifier{identity: domain.Identity{AccountID: "acc-1", Email: "alice@example.com", Role: domain.RoleCashier}}
	c, rec := newContext("Bearer signed.jwt.value")

	called := false
	handler := Auth(verifier)(func(c echo.Context) error {
		called = true
		identity, ok := Identity(c)
		require.True(t, ok)
		assert.Equal(t, "acc-1", identity.AccountID)
		assert.Equal(t, domain.RoleCashier, identity.Role)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "signed.jwt.value", verifier.gotToken)
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	verifier := &stubVerifier{identity: domain.Identity{AccountID: "acc-1", Role: domain.RoleUser}}
	c, _ := newContext("bearer tok")

	err := Auth(verifier)(func(c echo.Context) error { return nil })(c)
	require.NoError(t, err)
	assert.Equal(t, "tok", verifier.gotToken)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifyFn error
		want     error
	}{
		{"missing header", "", nil, domain.ErrTokenMissing},
		{"wrong scheme", "Token abc", nil, domain.ErrTokenInvalid},
		{"empty token", "Bearer   ", nil, domain.ErrTokenInvalid},
		{"bad signature", "Bearer forged", domain.ErrTokenInvalid, domain.ErrTokenInvalid},
		{"expired", "Bearer old", domain.ErrTokenExpired, domain.ErrTokenExpired},
		{"deactivated", "Bearer tok", domain.ErrAccountInactive, domain.ErrAccountInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &stubVerifier{err: tt.verifyFn}
			c, _ := newContext(tt.header)

			err := Auth(verifier)(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})(c)

			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, domain.KindUnauthenticated, domain.Kind(err))
			_, ok := Identity(c)
			assert.False(t, ok)
		})
	}
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, "token_missing", failureReason(domain.ErrTokenMissing))
	assert.Equal(t, "token_expired", failureReason(domain.ErrTokenExpired))
	assert.Equal(t, "account_inactive", failureReason(domain.ErrAccountInactive))
	assert.Equal(t, "token_invalid", failureReason(domain.ErrTokenInvalid))
}
