package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/storefront/commerce-api/internal/api/middleware"
	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// --- request helpers ---

func newRequest(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withActor(c echo.Context, id string, role domain.Role) echo.Context {
	middleware.SetIdentity(c, domain.Identity{AccountID: id, Email: id + "@example.com", Role: role})
	return c
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

// --- service stubs ---

type stubAuthService struct {
	registerFn      func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn         func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	resetRequestFn  func(ctx context.Context, email string) error
	changeRoleFn    func(ctx context.Context, accountID, role string) (*domain.Account, error)
	setActiveFn     func(ctx context.Context, accountID string, active bool) (*domain.Account, error)
	updateProfileFn func(ctx context.Context, accountID string, in ports.ProfileUpdate) (*domain.Account, error)
}

func (s *stubAuthService) VerifyToken(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, domain.ErrTokenInvalid
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(_ context.Context, accountID string) (*domain.Account, error) {
	return &domain.Account{ID: accountID, Role: domain.RoleUser, Active: true}, nil
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, accountID string, in ports.ProfileUpdate) (*domain.Account, error) {
	return s.updateProfileFn(ctx, accountID, in)
}

func (s *stubAuthService) ChangePassword(context.Context, string, string, string) error { return nil }

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if s.resetRequestFn == nil {
		return nil
	}
	return s.resetRequestFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(context.Context, string, string) error { return nil }

func (s *stubAuthService) RequestVerification(context.Context, string) error { return nil }

func (s *stubAuthService) VerifyEmail(_ context.Context, token string) error {
	if token == "" {
		return domain.ErrTokenUnusable
	}
	return nil
}

func (s *stubAuthService) ListAccounts(_ context.Context, page ports.Page) ([]*domain.Account, int64, error) {
	return []*domain.Account{{ID: "acc-1"}}, 1, nil
}

func (s *stubAuthService) ChangeRole(ctx context.Context, accountID, role string) (*domain.Account, error) {
	return s.changeRoleFn(ctx, accountID, role)
}

func (s *stubAuthService) SetActive(ctx context.Context, accountID string, active bool) (*domain.Account, error) {
	return s.setActiveFn(ctx, accountID, active)
}

type stubOrderService struct {
	placeFn      func(ctx context.Context, in ports.PlaceOrderInput) (*ports.PlacedOrder, error)
	getFn        func(ctx context.Context, actor domain.Identity, id string) (*domain.Order, error)
	listFn       func(ctx context.Context, actor domain.Identity, f ports.ListOrdersFilter) ([]*domain.Order, int64, error)
	transitionFn func(ctx context.Context, id, status string) (*ports.OrderTransition, error)
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (*ports.PlacedOrder, error) {
	return s.placeFn(ctx, in)
}

func (s *stubOrderService) GetOrder(ctx context.Context, actor domain.Identity, id string) (*domain.Order, error) {
	return s.getFn(ctx, actor, id)
}

func (s *stubOrderService) ListOrders(ctx context.Context, actor domain.Identity, f ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	return s.listFn(ctx, actor, f)
}

func (s *stubOrderService) TransitionOrder(ctx context.Context, id, status string) (*ports.OrderTransition, error) {
	return s.transitionFn(ctx, id, status)
}

type stubInvoiceService struct {
	createFn     func(ctx context.Context, in ports.CreateInvoiceInput) (*domain.Invoice, error)
	getFn        func(ctx context.Context, id string) (*domain.Invoice, error)
	updateFn     func(ctx context.Context, id string, in ports.UpdateInvoiceInput) (*domain.Invoice, error)
	deleteFn     func(ctx context.Context, id string) error
	transitionFn func(ctx context.Context, id, status string) (*domain.Invoice, error)
}

func (s *stubInvoiceService) CreateInvoice(ctx context.Context, in ports.CreateInvoiceInput) (*domain.Invoice, error) {
	return s.createFn(ctx, in)
}

func (s *stubInvoiceService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.getFn(ctx, id)
}

func (s *stubInvoiceService) GetInvoiceByOrder(_ context.Context, orderID string) (*domain.Invoice, error) {
	return &domain.Invoice{ID: "inv-1", OrderID: orderID}, nil
}

func (s *stubInvoiceService) ListInvoices(context.Context, ports.ListInvoicesFilter) ([]*domain.Invoice, int64, error) {
	return nil, 0, nil
}

func (s *stubInvoiceService) UpdateInvoice(ctx context.Context, id string, in ports.UpdateInvoiceInput) (*domain.Invoice, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubInvoiceService) DeleteInvoice(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubInvoiceService) TransitionInvoice(ctx context.Context, id, status string) (*domain.Invoice, error) {
	return s.transitionFn(ctx, id, status)
}

type stubBillService struct {
	createFn     func(ctx context.Context, actor domain.Identity, in ports.CreateBillInput) (*domain.Bill, error)
	listFn       func(ctx context.Context, actor domain.Identity, f ports.ListBillsFilter) ([]*domain.Bill, int64, error)
	updateFn     func(ctx context.Context, actor domain.Identity, id string, in ports.UpdateBillInput) (*domain.Bill, error)
	deleteFn     func(ctx context.Context, actor domain.Identity, id string) error
	transitionFn func(ctx context.Context, id, status, transactionID string) (*ports.BillTransition, error)
}

func (s *stubBillService) CreateBill(ctx context.Context, actor domain.Identity, in ports.CreateBillInput) (*domain.Bill, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubBillService) GetBill(_ context.Context, actor domain.Identity, id string) (*domain.Bill, error) {
	return &domain.Bill{ID: id, CreatedBy: actor.AccountID}, nil
}

func (s *stubBillService) ListBills(ctx context.Context, actor domain.Identity, f ports.ListBillsFilter) ([]*domain.Bill, int64, error) {
	return s.listFn(ctx, actor, f)
}

func (s *stubBillService) UpdateBill(ctx context.Context, actor domain.Identity, id string, in ports.UpdateBillInput) (*domain.Bill, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubBillService) DeleteBill(ctx context.Context, actor domain.Identity, id string) error {
	return s.deleteFn(ctx, actor, id)
}

func (s *stubBillService) TransitionBill(ctx context.Context, id, status, transactionID string) (*ports.BillTransition, error) {
	return s.transitionFn(ctx, id, status, transactionID)
}
