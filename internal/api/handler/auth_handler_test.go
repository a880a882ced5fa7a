package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

func TestAuthHandler_Register(t *testing.T) {
	var got ports.RegisterInput
	svc := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			got = in
			return &ports.AuthResult{
				Token:     "signed.jwt",
				ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
				Account:   &domain.Account{ID: "acc-1", Email: in.Email, Role: domain.RoleUser, Active: true},
			}, nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newRequest(t, http.MethodPost, "/auth/register",
		`{"email":"ada@example.com","password":"secret1","first_name":"Ada","last_name":"Lovelace"}`)
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Ada", got.FirstName)

	var body authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "signed.jwt", body.Token)
	assert.Equal(t, "acc-1", body.Account.ID)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad email", `{"email":"nope","password":"secret1","first_name":"A","last_name":"B"}`, "email must be a valid email"},
		{"short password", `{"email":"a@example.com","password":"123","first_name":"A","last_name":"B"}`, "password must be at least 6"},
		{"missing names", `{"email":"a@example.com","password":"secret1"}`, "first_name is required"},
		{"malformed json", `{"email":`, "invalid payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newRequest(t, http.MethodPost, "/auth/register", tt.body)
			err := h.Register(c)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAuthHandler_Login_PropagatesServiceError(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(svc)

	c, _ := newRequest(t, http.MethodPost, "/auth/login", `{"email":"a@example.com","password":"wrong"}`)
	err := h.Login(c)

	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, domain.KindUnauthenticated, domain.Kind(err))
}

func TestAuthHandler_ForgotPassword_SameAnswerForUnknownEmail(t *testing.T) {
	called := false
	svc := &stubAuthService{
		resetRequestFn: func(context.Context, string) error {
			called = true
			return nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newRequest(t, http.MethodPost, "/auth/forgot-password", `{"email":"ghost@example.com"}`)
	require.NoError(t, h.ForgotPassword(c))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "if the email is registered")
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newRequest(t, http.MethodGet, "/auth/me", "")
	withActor(c, "acc-7", domain.RoleUser)
	require.NoError(t, h.Me(c))

	var account domain.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.Equal(t, "acc-7", account.ID)
}

func TestAuthHandler_Me_WithoutIdentity(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newRequest(t, http.MethodGet, "/auth/me", "")
	assert.ErrorIs(t, h.Me(c), domain.ErrUnauthenticated)
}

func TestAuthHandler_UpdateProfile_OnlyPassesProvidedFields(t *testing.T) {
	var got ports.ProfileUpdate
	svc := &stubAuthService{
		updateProfileFn: func(_ context.Context, id string, in ports.ProfileUpdate) (*domain.Account, error) {
			got = in
			return &domain.Account{ID: id, FirstName: *in.FirstName}, nil
		},
	}
	h := NewAuthHandler(svc)

	// role is not part of the profile and must be ignored.
	c, rec := newRequest(t, http.MethodPatch, "/auth/profile", `{"first_name":"Grace","role":"admin"}`)
	withActor(c, "acc-1", domain.RoleUser)
	require.NoError(t, h.UpdateProfile(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.FirstName)
	assert.Equal(t, "Grace", *got.FirstName)
	assert.Nil(t, got.LastName)
	assert.Nil(t, got.Phone)
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newRequest(t, http.MethodGet, "/auth/verify-email/tok", "")
	withParam(c, "token", "tok")
	require.NoError(t, h.VerifyEmail(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, _ = newRequest(t, http.MethodGet, "/auth/verify-email/", "")
	assert.ErrorIs(t, h.VerifyEmail(c), domain.ErrTokenUnusable)
}

func TestAuthHandler_ChangeRole(t *testing.T) {
	svc := &stubAuthService{
		changeRoleFn: func(_ context.Context, id, role string) (*domain.Account, error) {
			r, err := domain.ParseRole(role)
			if err != nil {
				return nil, err
			}
			return &domain.Account{ID: id, Role: r}, nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newRequest(t, http.MethodPatch, "/auth/accounts/acc-2/role", `{"role":"cashier"}`)
	withParam(withActor(c, "admin-1", domain.RoleAdmin), "id", "acc-2")
	require.NoError(t, h.ChangeRole(c))

	var account domain.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.Equal(t, domain.RoleCashier, account.Role)

	c, _ = newRequest(t, http.MethodPatch, "/auth/accounts/acc-2/role", `{"role":"overlord"}`)
	withParam(withActor(c, "admin-1", domain.RoleAdmin), "id", "acc-2")
	assert.ErrorIs(t, h.ChangeRole(c), domain.ErrValidation)
}

func TestAuthHandler_SetActive_RequiresExplicitFlag(t *testing.T) {
	var got *bool
	svc := &stubAuthService{
		setActiveFn: func(_ context.Context, id string, active bool) (*domain.Account, error) {
			got = &active
			return &domain.Account{ID: id, Active: active}, nil
		},
	}
	h := NewAuthHandler(svc)

	c, _ := newRequest(t, http.MethodPatch, "/auth/accounts/acc-2/active", `{}`)
	withParam(c, "id", "acc-2")
	err := h.SetActive(c)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, got)

	c, rec := newRequest(t, http.MethodPatch, "/auth/accounts/acc-2/active", `{"active":false}`)
	withParam(c, "id", "acc-2")
	require.NoError(t, h.SetActive(c))
	require.NotNil(t, got)
	assert.False(t, *got)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_ListAccounts_Pagination(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newRequest(t, http.MethodGet, "/auth/accounts?page=2&limit=500", "")
	require.NoError(t, h.ListAccounts(c))

	var body listResponse[domain.Account]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, ports.MaxPageLimit, body.Limit)
	assert.EqualValues(t, 1, body.Total)

	c, _ = newRequest(t, http.MethodGet, "/auth/accounts?page=abc", "")
	err := h.ListAccounts(c)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
