package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/commerce-api/internal/api/handler"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// fakeAuth accepts the role name as the bearer token. Methods not overridden
// panic through the nil embedded interface.
type fakeAuth struct {
	ports.AuthService
}

func (fakeAuth) VerifyToken(_ context.Context, token string) (domain.Identity, error) {
	role, err := domain.ParseRole(token)
	if err != nil {
		return domain.Identity{}, domain.ErrTokenInvalid
	}
	return domain.Identity{AccountID: token + "-1", Email: token + "@example.com", Role: role}, nil
}

func (fakeAuth) ListAccounts(context.Context, ports.Page) ([]*domain.Account, int64, error) {
	return nil, 0, nil
}

type fakeOrders struct {
	ports.OrderService
}

func (fakeOrders) ListOrders(context.Context, domain.Identity, ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	return nil, 0, nil
}

func (fakeOrders) GetOrder(_ context.Context, _ domain.Identity, id string) (*domain.Order, error) {
	if id == "boom" {
		return nil, errors.New("socket closed")
	}
	return nil, domain.ErrOrderNotFound
}

func (fakeOrders) TransitionOrder(_ context.Context, id, status string) (*ports.OrderTransition, error) {
	return &ports.OrderTransition{
		Order: &domain.Order{ID: id, Status: domain.OrderStatus(status)},
		From:  domain.OrderPending,
	}, nil
}

type fakeInvoices struct {
	ports.InvoiceService
}

func (fakeInvoices) ListInvoices(context.Context, ports.ListInvoicesFilter) ([]*domain.Invoice, int64, error) {
	return nil, 0, nil
}

func (fakeInvoices) UpdateInvoice(context.Context, string, ports.UpdateInvoiceInput) (*domain.Invoice, error) {
	return nil, domain.ErrInvoiceLocked
}

type fakeBills struct {
	ports.BillService
}

func (fakeBills) UpdateBill(context.Context, domain.Identity, string, ports.UpdateBillInput) (*domain.Bill, error) {
	return nil, domain.ErrBillLocked
}

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	return NewRouter(Deps{
		Auth:     fakeAuth{},
		Orders:   fakeOrders{},
		Invoices: fakeInvoices{},
		Bills:    fakeBills{},
		Health: map[string]handler.Pinger{
			"mongo": handler.PingFunc(func(context.Context) error { return nil }),
		},
		Logger:   zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})
}

func serve(t *testing.T, e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_Guards(t *testing.T) {
	e := newTestRouter(t)

	tests := []struct {
		name     string
		method   string
		target   string
		token    string
		body     string
		wantCode int
		wantKind string
	}{
		{"orders need a token", http.MethodGet, "/orders", "", "", http.StatusUnauthorized, domain.KindUnauthenticated},
		{"unknown token", http.MethodGet, "/orders", "forged", "", http.StatusUnauthorized, domain.KindUnauthenticated},
		{"user lists own orders", http.MethodGet, "/orders", "user", "", http.StatusOK, ""},
		{"user cannot see invoices", http.MethodGet, "/invoices", "user", "", http.StatusForbidden, domain.KindForbidden},
		{"cashier sees invoices", http.MethodGet, "/invoices", "cashier", "", http.StatusOK, ""},
		{"cashier cannot move orders", http.MethodPatch, "/orders/o1/status", "cashier", `{"status":"processing"}`, http.StatusForbidden, domain.KindForbidden},
		{"manager moves orders", http.MethodPatch, "/orders/o1/status", "manager", `{"status":"processing"}`, http.StatusOK, ""},
		{"admin moves orders", http.MethodPut, "/orders/o1/status", "admin", `{"status":"processing"}`, http.StatusOK, ""},
		{"user cannot edit bills", http.MethodPut, "/bills/b1", "user", `{"notes":"x"}`, http.StatusForbidden, domain.KindForbidden},
		{"manager cannot list accounts", http.MethodGet, "/auth/accounts", "manager", "", http.StatusForbidden, domain.KindForbidden},
		{"admin lists accounts", http.MethodGet, "/auth/accounts", "admin", "", http.StatusOK, ""},
		{"owner alias is admin", http.MethodGet, "/auth/accounts", "owner", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, e, tt.method, tt.target, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, decodeError(t, rec).Kind)
			}
		})
	}
}

func TestRouter_ErrorMapping(t *testing.T) {
	e := newTestRouter(t)

	t.Run("missing order", func(t *testing.T) {
		rec := serve(t, e, http.MethodGet, "/orders/nope", "user", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, domain.KindNotFound, body.Kind)
		assert.Equal(t, "order not found", body.Error)
	})

	t.Run("settled bill is a bad request", func(t *testing.T) {
		rec := serve(t, e, http.MethodPut, "/bills/b1", "cashier", `{"notes":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.KindConflict, decodeError(t, rec).Kind)
	})

	t.Run("settled invoice is a conflict", func(t *testing.T) {
		rec := serve(t, e, http.MethodPut, "/invoices/i1", "manager", `{"notes":"x"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, domain.KindConflict, decodeError(t, rec).Kind)
	})

	t.Run("validation", func(t *testing.T) {
		rec := serve(t, e, http.MethodPost, "/auth/login", "", `{"email":"not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, domain.KindValidation, body.Kind)
		assert.Contains(t, body.Error, "email must be a valid email")
		assert.Contains(t, body.Error, "password is required")
	})

	t.Run("unexpected error is hidden", func(t *testing.T) {
		rec := serve(t, e, http.MethodGet, "/orders/boom", "user", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, domain.KindInternal, body.Kind)
		assert.Equal(t, "internal server error", body.Error)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := serve(t, e, http.MethodGet, "/nowhere", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, domain.KindNotFound, decodeError(t, rec).Kind)
	})
}

func TestRouter_Ops(t *testing.T) {
	e := newTestRouter(t)

	rec := serve(t, e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = serve(t, e, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, e, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "commerce_api_requests_total")
}
