package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

type BillServiceDeps struct {
	Bills     ports.BillRepository
	Orders    ports.OrderRepository
	Numbering *NumberingService
	Lifecycle *Lifecycle
	Clock     func() time.Time
	Logger    zerolog.Logger
}

// BillService implements the cashier billing desk.
type BillService struct {
	bills     ports.BillRepository
	orders    ports.OrderRepository
	numbering *NumberingService
	lifecycle *Lifecycle
	clock     func() time.Time
	logger    zerolog.Logger
}

func NewBillService(deps BillServiceDeps) *BillService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &BillService{
		bills:     deps.Bills,
		orders:    deps.Orders,
		numbering: deps.Numbering,
		lifecycle: deps.Lifecycle,
		clock:     func() time.Time { return clock().UTC() },
		logger:    deps.Logger,
	}
}

// CreateBill issues a pending bill on behalf of actor. A bill raised against
// an order without explicit items copies the order lines.
func (s *BillService) CreateBill(ctx context.Context, actor domain.Identity, in ports.CreateBillInput) (*domain.Bill, error) {
	if strings.TrimSpace(in.Buyer) == "" {
		return nil, domain.Invalid("buyer is required")
	}
	payment, err := domain.ParseBillPaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := validateShippingAddress(in.ShippingAddress); err != nil {
		return nil, err
	}

	var items []domain.BillItem
	if len(in.Items) > 0 {
		if items, err = billItems(in.Items); err != nil {
			return nil, err
		}
	}
	if in.OrderID != "" {
		order, err := s.orders.FindByID(ctx, in.OrderID)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = lo.Map(order.Items, func(it domain.OrderItem, _ int) domain.BillItem {
				return domain.BillItem{ProductID: it.ProductID, Name: it.Title, Quantity: it.Quantity, UnitPrice: it.Price}
			})
		}
	}
	if len(items) == 0 {
		return nil, domain.Invalid("at least one item is required")
	}

	now := s.clock()
	number, err := s.numbering.Next(ctx, BillPrefix, now)
	if err != nil {
		return nil, err
	}

	bill := &domain.Bill{
		Number:          number,
		OrderID:         in.OrderID,
		CreatedBy:       actor.AccountID,
		Buyer:           strings.TrimSpace(in.Buyer),
		Items:           items,
		PaymentMethod:   payment,
		ShippingAddress: in.ShippingAddress,
		Status:          domain.BillPending,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	bill.Recalculate()

	if err := s.bills.Create(ctx, bill); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("bill_id", bill.ID).
		Str("number", bill.Number).
		Str("created_by", actor.AccountID).
		Msg("bill issued")
	return bill, nil
}

// GetBill returns a bill; accounts without a staff role only see their own.
func (s *BillService) GetBill(ctx context.Context, actor domain.Identity, id string) (*domain.Bill, error) {
	bill, err := s.bills.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && bill.CreatedBy != actor.AccountID {
		return nil, domain.ErrForbidden
	}
	return bill, nil
}

func (s *BillService) ListBills(ctx context.Context, actor domain.Identity, filter ports.ListBillsFilter) ([]*domain.Bill, int64, error) {
	if !actor.Role.IsStaff() {
		filter.CreatedBy = actor.AccountID
	}
	if filter.Status != "" {
		if _, err := domain.ParseBillStatus(filter.Status); err != nil {
			return nil, 0, err
		}
	}
	filter.Page = filter.Page.Normalize()
	return s.bills.List(ctx, filter)
}

// UpdateBill edits a pending bill. Only its creator or an admin may edit it.
func (s *BillService) UpdateBill(ctx context.Context, actor domain.Identity, id string, in ports.UpdateBillInput) (*domain.Bill, error) {
	bill, err := s.bills.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(bill.CreatedBy) {
		return nil, domain.ErrNotOwner
	}
	if !bill.Editable() {
		return nil, domain.ErrBillLocked
	}

	if in.Buyer != nil {
		if strings.TrimSpace(*in.Buyer) == "" {
			return nil, domain.Invalid("buyer is required")
		}
		bill.Buyer = strings.TrimSpace(*in.Buyer)
	}
	if in.Items != nil {
		items, err := billItems(in.Items)
		if err != nil {
			return nil, err
		}
		bill.Items = items
	}
	if in.PaymentMethod != nil {
		payment, err := domain.ParseBillPaymentMethod(*in.PaymentMethod)
		if err != nil {
			return nil, err
		}
		bill.PaymentMethod = payment
	}
	if in.ShippingAddress != nil {
		if err := validateShippingAddress(*in.ShippingAddress); err != nil {
			return nil, err
		}
		bill.ShippingAddress = *in.ShippingAddress
	}
	if in.Notes != nil {
		bill.Notes = strings.TrimSpace(*in.Notes)
	}
	bill.Recalculate()
	bill.UpdatedAt = s.clock()

	if err := s.bills.Update(ctx, bill); err != nil {
		return nil, lockedOnStale(err)
	}
	return bill, nil
}

// DeleteBill removes a bill that was never settled. Only its creator or an
// admin may delete it.
func (s *BillService) DeleteBill(ctx context.Context, actor domain.Identity, id string) error {
	bill, err := s.bills.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(bill.CreatedBy) {
		return domain.ErrNotOwner
	}
	if !bill.Deletable() {
		return domain.ErrBillLocked
	}
	if err := s.bills.Delete(ctx, bill.ID, bill.Status); err != nil {
		return lockedOnStale(err)
	}
	s.logger.Info().Str("bill_id", bill.ID).Str("deleted_by", actor.AccountID).Msg("bill deleted")
	return nil
}

func (s *BillService) TransitionBill(ctx context.Context, id, status, transactionID string) (*ports.BillTransition, error) {
	target, err := domain.ParseBillStatus(status)
	if err != nil {
		return nil, err
	}
	return s.lifecycle.TransitionBill(ctx, id, target, strings.TrimSpace(transactionID))
}

func billItems(in []ports.BillItemInput) ([]domain.BillItem, error) {
	for i, it := range in {
		if strings.TrimSpace(it.Name) == "" {
			return nil, domain.Invalid("items[%d]: name is required", i)
		}
		if it.Quantity < 1 {
			return nil, domain.Invalid("items[%d]: quantity must be at least 1", i)
		}
		if it.UnitPrice.IsNegative() {
			return nil, domain.Invalid("items[%d]: unit price must not be negative", i)
		}
	}
	if len(in) == 0 {
		return nil, domain.Invalid("at least one item is required")
	}
	return lo.Map(in, func(it ports.BillItemInput, _ int) domain.BillItem {
		return domain.BillItem{
			ProductID: it.ProductID,
			Name:      strings.TrimSpace(it.Name),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}), nil
}

func validateShippingAddress(a domain.ShippingAddress) error {
	if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" {
		return domain.Invalid("shipping address needs a street and a city")
	}
	return nil
}

// lockedOnStale reports a bill whose status moved on between read and write
// as locked: the only status an edit accepts is pending.
func lockedOnStale(err error) error {
	if errors.Is(err, domain.ErrStaleStatus) {
		return domain.ErrBillLocked
	}
	return err
}
