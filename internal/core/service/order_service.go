package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

// OrderServiceDeps bundles the collaborators of OrderService. Idempotency is
// optional.
type OrderServiceDeps struct {
	Orders         ports.OrderRepository
	Invoices       ports.InvoiceRepository
	Catalog        ports.CatalogReader
	Numbering      *NumberingService
	Lifecycle      *Lifecycle
	Tx             ports.Transactor
	Idempotency    ports.IdempotencyStore
	InvoiceDueDays int
	Clock          func() time.Time
	Logger         zerolog.Logger
}

// OrderService turns checkout requests into an order and its invoice.
type OrderService struct {
	orders      ports.OrderRepository
	invoices    ports.InvoiceRepository
	catalog     ports.CatalogReader
	numbering   *NumberingService
	lifecycle   *Lifecycle
	tx          ports.Transactor
	idempotency ports.IdempotencyStore
	invoiceDue  time.Duration
	clock       func() time.Time
	logger      zerolog.Logger
}

func NewOrderService(deps OrderServiceDeps) *OrderService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &OrderService{
		orders:      deps.Orders,
		invoices:    deps.Invoices,
		catalog:     deps.Catalog,
		numbering:   deps.Numbering,
		lifecycle:   deps.Lifecycle,
		tx:          deps.Tx,
		idempotency: deps.Idempotency,
		invoiceDue:  time.Duration(deps.InvoiceDueDays) * 24 * time.Hour,
		clock:       func() time.Time { return clock().UTC() },
		logger:      deps.Logger,
	}
}

// PlaceOrder prices the requested lines against the catalog, then stores the
// order and its invoice in one transaction. Either both exist afterwards or
// neither does.
func (s *OrderService) PlaceOrder(ctx context.Context, in ports.PlaceOrderInput) (*ports.PlacedOrder, error) {
	payment, shipping, err := validatePlaceOrder(in)
	if err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" && s.idempotency != nil {
		existingID, reserved, err := s.idempotency.Reserve(ctx, in.PlacedBy, in.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !reserved {
			if existingID == "" {
				return nil, domain.ErrRequestInProgress
			}
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("order_id", existingID).Msg("idempotent replay")
			return s.replay(ctx, in.PlacedBy, existingID)
		}
	}

	placed, err := s.place(ctx, in, payment, shipping)
	if in.IdempotencyKey != "" && s.idempotency != nil {
		if err != nil {
			if relErr := s.idempotency.Release(ctx, in.PlacedBy, in.IdempotencyKey); relErr != nil {
				s.logger.Warn().Err(relErr).Str("idempotency_key", in.IdempotencyKey).Msg("failed to release idempotency key")
			}
			return nil, err
		}
		if compErr := s.idempotency.Complete(ctx, in.PlacedBy, in.IdempotencyKey, placed.Order.ID); compErr != nil {
			s.logger.Warn().Err(compErr).Str("idempotency_key", in.IdempotencyKey).Msg("failed to record idempotency key")
		}
	}
	return placed, err
}

func (s *OrderService) place(ctx context.Context, in ports.PlaceOrderInput, payment domain.PaymentMethod, shipping domain.ShippingMethod) (*ports.PlacedOrder, error) {
	ids := lo.Uniq(lo.Map(in.Items, func(l ports.OrderLineInput, _ int) string { return l.ProductID }))
	products, err := s.catalog.FindProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}

	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.ProductID)
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  line.Quantity,
			Price:     p.Price,
		})
	}

	now := s.clock()
	order := &domain.Order{
		Customer:       trimCustomer(in.Customer),
		Items:          items,
		PaymentMethod:  payment,
		ShippingMethod: shipping,
		Status:         domain.OrderPending,
		PlacedBy:       in.PlacedBy,
		Notes:          strings.TrimSpace(in.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	order.Recalculate()

	// Numbers are drawn outside the transaction; a rollback leaves a gap.
	number, err := s.numbering.Next(ctx, InvoicePrefix, now)
	if err != nil {
		return nil, err
	}

	var invoice *domain.Invoice
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		invoice = domain.NewInvoiceForOrder(order, number, now, s.invoiceDue)
		if err := s.invoices.Create(ctx, invoice); err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := s.orders.LinkInvoice(ctx, order.ID, invoice.ID, now); err != nil {
			return fmt.Errorf("link invoice: %w", err)
		}
		order.InvoiceID = invoice.ID
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("invoice_number", number).Msg("failed to place order")
		return nil, fmt.Errorf("place order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("invoice_number", invoice.Number).
		Str("grand_total", order.GrandTotal.StringFixed(2)).
		Msg("order placed")
	return &ports.PlacedOrder{Order: order, Invoice: invoice}, nil
}

// replay returns the order an earlier request produced, provided the same
// account placed it.
func (s *OrderService) replay(ctx context.Context, placedBy, orderID string) (*ports.PlacedOrder, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PlacedBy != placedBy {
		return nil, domain.ErrOrderNotFound
	}
	invoice, err := s.invoices.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &ports.PlacedOrder{Order: order, Invoice: invoice, Replayed: true}, nil
}

// GetOrder returns an order. Accounts without a staff role only see their own.
func (s *OrderService) GetOrder(ctx context.Context, actor domain.Identity, id string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && order.PlacedBy != actor.AccountID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, actor domain.Identity, filter ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	if !actor.Role.IsStaff() {
		filter.PlacedBy = actor.AccountID
	}
	if filter.Status != "" {
		if _, err := domain.ParseOrderStatus(filter.Status); err != nil {
			return nil, 0, err
		}
	}
	filter.Page = filter.Page.Normalize()
	return s.orders.List(ctx, filter)
}

// TransitionOrder hands a status change to the lifecycle.
func (s *OrderService) TransitionOrder(ctx context.Context, id, status string) (*ports.OrderTransition, error) {
	target, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	return s.lifecycle.TransitionOrder(ctx, id, target)
}

func validatePlaceOrder(in ports.PlaceOrderInput) (domain.PaymentMethod, domain.ShippingMethod, error) {
	var errs []error
	if len(in.Items) == 0 {
		errs = append(errs, domain.Invalid("at least one item is required"))
	}
	for i, line := range in.Items {
		if strings.TrimSpace(line.ProductID) == "" {
			errs = append(errs, domain.Invalid("items[%d]: product id is required", i))
		}
		if line.Quantity < 1 {
			errs = append(errs, domain.Invalid("items[%d]: quantity must be at least 1", i))
		}
	}
	c := in.Customer
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		errs = append(errs, domain.Invalid("customer name is required"))
	}
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, domain.Invalid("customer email is required"))
	}
	if strings.TrimSpace(c.Address) == "" || strings.TrimSpace(c.City) == "" {
		errs = append(errs, domain.Invalid("customer address is required"))
	}

	payment, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		errs = append(errs, err)
	}
	shipping, err := domain.ParseShippingMethod(in.ShippingMethod)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return "", "", errors.Join(errs...)
	}
	return payment, shipping, nil
}

func trimCustomer(c domain.Customer) domain.Customer {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	return c
}
