package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store shared by the stub repositories
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	seq      int
	accounts map[string]*domain.Account
	orders   map[string]*domain.Order
	invoices map[string]*domain.Invoice
	bills    map[string]*domain.Bill
	// failOn injects an error into the named operation, e.g. "invoices.Create".
	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]*domain.Account),
		orders:   make(map[string]*domain.Order),
		invoices: make(map[string]*domain.Invoice),
		bills:    make(map[string]*domain.Bill),
		failOn:   make(map[string]error),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) fail(op string) error {
	return s.failOn[op]
}

type memSnapshot struct {
	accounts map[string]*domain.Account
	orders   map[string]*domain.Order
	invoices map[string]*domain.Invoice
	bills    map[string]*domain.Bill
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		accounts: maps.Clone(s.accounts),
		orders:   maps.Clone(s.orders),
		invoices: maps.Clone(s.invoices),
		bills:    maps.Clone(s.bills),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts, s.orders, s.invoices, s.bills = snap.accounts, snap.orders, snap.invoices, snap.bills
}

// Stored values are replaced, never mutated, so a shallow map clone is a
// faithful snapshot.

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	return &c
}

func cloneInvoice(inv *domain.Invoice) *domain.Invoice {
	c := *inv
	c.Items = slices.Clone(inv.Items)
	return &c
}

func cloneBill(b *domain.Bill) *domain.Bill {
	c := *b
	c.Items = slices.Clone(b.Items)
	return &c
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}

func paginate[T any](rows []T, p ports.Page) ([]T, int64) {
	total := int64(len(rows))
	p = p.Normalize()
	skip := p.Skip()
	if skip >= len(rows) {
		return []T{}, total
	}
	end := min(skip+p.Limit, len(rows))
	return rows[skip:end], total
}

// ---------------------------------------------------------------------------
// Transactor
// ---------------------------------------------------------------------------

type stubTx struct {
	store *memStore
	calls int
}

func (t *stubTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

type stubAccountRepo struct{ s *memStore }

func (r stubAccountRepo) Create(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.accounts {
		if existing.Email == a.Email {
			return domain.ErrAccountExists
		}
	}
	a.ID = r.s.nextID("acc")
	r.s.accounts[a.ID] = cloneAccount(a)
	return nil
}

func (r stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// modify applies fn to a copy of the account with id when match accepts it.
func (r stubAccountRepo) modify(op, id string, match func(*domain.Account) bool, fn func(*domain.Account)) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail(op); err != nil {
		return nil, err
	}
	a, ok := r.s.accounts[id]
	if !ok || (match != nil && !match(a)) {
		return nil, domain.ErrAccountNotFound
	}
	c := cloneAccount(a)
	fn(c)
	r.s.accounts[id] = c
	return cloneAccount(c), nil
}

func (r stubAccountRepo) RecordLogin(_ context.Context, id, passwordHash string, at time.Time) (*domain.Account, error) {
	return r.modify("accounts.RecordLogin", id,
		func(a *domain.Account) bool { return a.Active && a.PasswordHash == passwordHash },
		func(a *domain.Account) { a.LastLoginAt = &at })
}

func (r stubAccountRepo) SetResetToken(_ context.Context, id, tokenHash string, expiresAt, at time.Time) error {
	_, err := r.modify("accounts.SetResetToken", id, nil, func(a *domain.Account) {
		a.ResetTokenHash, a.ResetExpiresAt, a.UpdatedAt = tokenHash, &expiresAt, at
	})
	return err
}

func (r stubAccountRepo) SetVerificationToken(_ context.Context, id, tokenHash string, expiresAt, at time.Time) error {
	_, err := r.modify("accounts.SetVerificationToken", id, nil, func(a *domain.Account) {
		a.VerificationTokenHash, a.VerificationExpiresAt, a.UpdatedAt = tokenHash, &expiresAt, at
	})
	return err
}

func (r stubAccountRepo) UpdateProfile(_ context.Context, id string, in ports.ProfileUpdate, at time.Time) (*domain.Account, error) {
	return r.modify("accounts.UpdateProfile", id, nil, func(a *domain.Account) {
		if in.FirstName != nil {
			a.FirstName = *in.FirstName
		}
		if in.LastName != nil {
			a.LastName = *in.LastName
		}
		if in.Phone != nil {
			a.Phone = *in.Phone
		}
		a.UpdatedAt = at
	})
}

func (r stubAccountRepo) ReplacePasswordHash(_ context.Context, id, oldHash, newHash string, at time.Time) error {
	_, err := r.modify("accounts.ReplacePasswordHash", id,
		func(a *domain.Account) bool { return a.PasswordHash == oldHash },
		func(a *domain.Account) { a.PasswordHash, a.UpdatedAt = newHash, at })
	return err
}

func (r stubAccountRepo) SetRole(_ context.Context, id string, role domain.Role, at time.Time) (*domain.Account, error) {
	return r.modify("accounts.SetRole", id, nil, func(a *domain.Account) { a.Role, a.UpdatedAt = role, at })
}

func (r stubAccountRepo) SetActive(_ context.Context, id string, active bool, at time.Time) (*domain.Account, error) {
	return r.modify("accounts.SetActive", id, nil, func(a *domain.Account) { a.Active, a.UpdatedAt = active, at })
}

func (r stubAccountRepo) GrantAdmin(_ context.Context, id string, at time.Time) (*domain.Account, error) {
	return r.modify("accounts.GrantAdmin", id, nil, func(a *domain.Account) {
		a.Role, a.Active, a.UpdatedAt = domain.RoleAdmin, true, at
	})
}

func (r stubAccountRepo) List(_ context.Context, p ports.Page) ([]*domain.Account, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := make([]*domain.Account, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		rows = append(rows, cloneAccount(a))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	page, total := paginate(rows, p)
	return page, total, nil
}

func (r stubAccountRepo) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time, passwordHash string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.accounts {
		if a.ResetTokenHash == tokenHash && a.ResetExpiresAt != nil && now.Before(*a.ResetExpiresAt) {
			c := cloneAccount(a)
			c.PasswordHash = passwordHash
			c.ResetTokenHash = ""
			c.ResetExpiresAt = nil
			c.UpdatedAt = now
			r.s.accounts[id] = c
			return cloneAccount(c), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r stubAccountRepo) ConsumeVerificationToken(_ context.Context, tokenHash string, now time.Time) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, a := range r.s.accounts {
		if a.VerificationTokenHash == tokenHash && a.VerificationExpiresAt != nil && now.Before(*a.VerificationExpiresAt) {
			c := cloneAccount(a)
			c.Verified = true
			c.VerificationTokenHash = ""
			c.VerificationExpiresAt = nil
			c.UpdatedAt = now
			r.s.accounts[id] = c
			return cloneAccount(c), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

type stubOrderRepo struct{ s *memStore }

func (r stubOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("orders.Create"); err != nil {
		return err
	}
	o.ID = r.s.nextID("ord")
	r.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r stubOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r stubOrderRepo) List(_ context.Context, f ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*domain.Order
	for _, o := range r.s.orders {
		if f.PlacedBy != "" && o.PlacedBy != f.PlacedBy {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		rows = append(rows, cloneOrder(o))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	page, total := paginate(rows, f.Page)
	return page, total, nil
}

func (r stubOrderRepo) LinkInvoice(_ context.Context, orderID, invoiceID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("orders.LinkInvoice"); err != nil {
		return err
	}
	o, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	c := cloneOrder(o)
	c.InvoiceID = invoiceID
	c.UpdatedAt = at
	r.s.orders[orderID] = c
	return nil
}

func (r stubOrderRepo) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok || o.Status != from {
		return domain.ErrStaleStatus
	}
	c := cloneOrder(o)
	c.Status = to
	c.UpdatedAt = at
	r.s.orders[id] = c
	return nil
}

// ---------------------------------------------------------------------------
// Invoices
// ---------------------------------------------------------------------------

type stubInvoiceRepo struct{ s *memStore }

func (r stubInvoiceRepo) Create(_ context.Context, inv *domain.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("invoices.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.invoices {
		if existing.Number == inv.Number {
			return domain.ErrDuplicateNumber
		}
	}
	inv.ID = r.s.nextID("inv")
	r.s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r stubInvoiceRepo) FindByID(_ context.Context, id string) (*domain.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	return cloneInvoice(inv), nil
}

func (r stubInvoiceRepo) FindByOrderID(_ context.Context, orderID string) (*domain.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.OrderID == orderID {
			return cloneInvoice(inv), nil
		}
	}
	return nil, domain.ErrInvoiceNotFound
}

func (r stubInvoiceRepo) List(_ context.Context, f ports.ListInvoicesFilter) ([]*domain.Invoice, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*domain.Invoice
	for _, inv := range r.s.invoices {
		if f.Status != "" && string(inv.Status) != f.Status {
			continue
		}
		if f.OrderID != "" && inv.OrderID != f.OrderID {
			continue
		}
		rows = append(rows, cloneInvoice(inv))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	page, total := paginate(rows, f.Page)
	return page, total, nil
}

func (r stubInvoiceRepo) Update(_ context.Context, inv *domain.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.invoices[inv.ID]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	if stored.Status != inv.Status {
		return domain.ErrStaleStatus
	}
	r.s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r stubInvoiceRepo) UpdateStatus(_ context.Context, id string, from, to domain.InvoiceStatus, paidAt *time.Time, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("invoices.UpdateStatus"); err != nil {
		return err
	}
	inv, ok := r.s.invoices[id]
	if !ok || inv.Status != from {
		return domain.ErrStaleStatus
	}
	c := cloneInvoice(inv)
	c.Status = to
	c.UpdatedAt = at
	if paidAt != nil {
		c.PaidAt = paidAt
	}
	r.s.invoices[id] = c
	return nil
}

func (r stubInvoiceRepo) Delete(_ context.Context, id string, expected domain.InvoiceStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || inv.Status != expected {
		return domain.ErrStaleStatus
	}
	delete(r.s.invoices, id)
	return nil
}

// ---------------------------------------------------------------------------
// Bills
// ---------------------------------------------------------------------------

type stubBillRepo struct{ s *memStore }

func (r stubBillRepo) Create(_ context.Context, b *domain.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = r.s.nextID("bill")
	r.s.bills[b.ID] = cloneBill(b)
	return nil
}

func (r stubBillRepo) FindByID(_ context.Context, id string) (*domain.Bill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bills[id]
	if !ok {
		return nil, domain.ErrBillNotFound
	}
	return cloneBill(b), nil
}

func (r stubBillRepo) List(_ context.Context, f ports.ListBillsFilter) ([]*domain.Bill, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rows []*domain.Bill
	for _, b := range r.s.bills {
		if f.CreatedBy != "" && b.CreatedBy != f.CreatedBy {
			continue
		}
		if f.OrderID != "" && b.OrderID != f.OrderID {
			continue
		}
		if f.Status != "" && string(b.Status) != f.Status {
			continue
		}
		rows = append(rows, cloneBill(b))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	page, total := paginate(rows, f.Page)
	return page, total, nil
}

func (r stubBillRepo) Update(_ context.Context, b *domain.Bill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.bills[b.ID]
	if !ok {
		return domain.ErrBillNotFound
	}
	if stored.Status != b.Status {
		return domain.ErrStaleStatus
	}
	r.s.bills[b.ID] = cloneBill(b)
	return nil
}

func (r stubBillRepo) UpdateStatus(_ context.Context, id string, from, to domain.BillStatus, payment *domain.PaymentDetails, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bills[id]
	if !ok || b.Status != from {
		return domain.ErrStaleStatus
	}
	c := cloneBill(b)
	c.Status = to
	c.UpdatedAt = at
	if payment != nil {
		c.PaymentDetails = *payment
	}
	r.s.bills[id] = c
	return nil
}

func (r stubBillRepo) Delete(_ context.Context, id string, expected domain.BillStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bills[id]
	if !ok || b.Status != expected {
		return domain.ErrStaleStatus
	}
	delete(r.s.bills, id)
	return nil
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type stubCounter struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
}

func newStubCounter() *stubCounter {
	return &stubCounter{values: make(map[string]int64)}
}

func (c *stubCounter) Increment(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.values[key]++
	return c.values[key], nil
}

type stubCatalog struct {
	products map[string]domain.ProductSnapshot
}

func (c stubCatalog) FindProducts(_ context.Context, ids []string) (map[string]domain.ProductSnapshot, error) {
	out := make(map[string]domain.ProductSnapshot, len(ids))
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type stubMailer struct {
	resetTokens        map[string]string
	verificationTokens map[string]string
}

func newStubMailer() *stubMailer {
	return &stubMailer{resetTokens: map[string]string{}, verificationTokens: map[string]string{}}
}

func (m *stubMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.resetTokens[email] = token
	return nil
}

func (m *stubMailer) SendVerification(_ context.Context, email, token string) error {
	m.verificationTokens[email] = token
	return nil
}

type stubIdempotency struct {
	keys map[string]string // scope:key → order id, "" while reserved
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: map[string]string{}}
}

func (s *stubIdempotency) Reserve(_ context.Context, scope, key string) (string, bool, error) {
	key = scope + ":" + key
	if id, ok := s.keys[key]; ok {
		return id, false, nil
	}
	s.keys[key] = ""
	return "", true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, scope, key, orderID string) error {
	key = scope + ":" + key
	s.keys[key] = orderID
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, scope, key string) error {
	key = scope + ":" + key
	delete(s.keys, key)
	return nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

var (
	discardLogger = zerolog.Nop()
	fixedNow      = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
)

func fixedClock() time.Time { return fixedNow }

// harness wires every service over one in-memory store.
type harness struct {
	store       *memStore
	tx          *stubTx
	counter     *stubCounter
	mailer      *stubMailer
	idempotency *stubIdempotency
	catalog     stubCatalog

	numbering *NumberingService
	lifecycle *Lifecycle
	orders    *OrderService
	invoices  *InvoiceService
	bills     *BillService
	auth      *AuthService
}

func newHarness() *harness {
	h := &harness{
		store:       newMemStore(),
		counter:     newStubCounter(),
		mailer:      newStubMailer(),
		idempotency: newStubIdempotency(),
		catalog: stubCatalog{products: map[string]domain.ProductSnapshot{
			"p-10": {ID: "p-10", Title: "Notebook", Price: decimal.NewFromInt(10), Category: "stationery"},
			"p-5":  {ID: "p-5", Title: "Pen", Price: decimal.NewFromInt(5), Category: "stationery"},
		}},
	}
	h.tx = &stubTx{store: h.store}

	numbering, err := NewNumberingService(h.counter)
	if err != nil {
		panic(err)
	}
	h.numbering = numbering

	orderRepo := stubOrderRepo{h.store}
	invoiceRepo := stubInvoiceRepo{h.store}
	billRepo := stubBillRepo{h.store}

	h.lifecycle = NewLifecycle(LifecycleDeps{
		Orders: orderRepo, Invoices: invoiceRepo, Bills: billRepo,
		Tx: h.tx, Clock: fixedClock, Logger: discardLogger,
	})
	h.orders = NewOrderService(OrderServiceDeps{
		Orders: orderRepo, Invoices: invoiceRepo, Catalog: h.catalog,
		Numbering: numbering, Lifecycle: h.lifecycle, Tx: h.tx,
		Idempotency: h.idempotency, InvoiceDueDays: 30,
		Clock: fixedClock, Logger: discardLogger,
	})
	h.invoices = NewInvoiceService(InvoiceServiceDeps{
		Invoices: invoiceRepo, Numbering: numbering, Lifecycle: h.lifecycle,
		Clock: fixedClock, Logger: discardLogger,
	})
	h.bills = NewBillService(BillServiceDeps{
		Bills: billRepo, Orders: orderRepo, Numbering: numbering, Lifecycle: h.lifecycle,
		Clock: fixedClock, Logger: discardLogger,
	})
	h.auth = NewAuthService(AuthServiceDeps{
		Accounts: stubAccountRepo{h.store}, Mailer: h.mailer,
		JWTSecret: "test-secret", TokenTTL: time.Hour, BcryptCost: 4,
		Clock: fixedClock, Logger: discardLogger,
	})
	return h
}

func fakeCustomer() domain.Customer {
	return domain.Customer{
		FirstName:  gofakeit.FirstName(),
		LastName:   gofakeit.LastName(),
		Email:      strings.ToLower(gofakeit.Email()),
		Phone:      gofakeit.Phone(),
		Address:    gofakeit.Street(),
		City:       gofakeit.City(),
		PostalCode: gofakeit.Zip(),
		Country:    gofakeit.Country(),
	}
}

func placeInput(placedBy string, lines ...ports.OrderLineInput) ports.PlaceOrderInput {
	return ports.PlaceOrderInput{
		Customer:       fakeCustomer(),
		Items:          lines,
		PaymentMethod:  string(domain.PaymentCreditCard),
		ShippingMethod: string(domain.ShippingStandard),
		PlacedBy:       placedBy,
	}
}

func line(productID string, qty int) ports.OrderLineInput {
	return ports.OrderLineInput{ProductID: productID, Quantity: qty}
}

var (
	adminID   = domain.Identity{AccountID: "acc-admin", Role: domain.RoleAdmin}
	managerID = domain.Identity{AccountID: "acc-manager", Role: domain.RoleManager}
	cashierID = domain.Identity{AccountID: "acc-cashier", Role: domain.RoleCashier}
	otherCash = domain.Identity{AccountID: "acc-cashier-2", Role: domain.RoleCashier}
	userID    = domain.Identity{AccountID: "acc-user", Role: domain.RoleUser}
)
