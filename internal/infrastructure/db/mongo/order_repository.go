package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/commerce-api/internal/core/domain"
	"github.com/storefront/commerce-api/internal/core/ports"
)

const collectionOrders = "orders"

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

type mongoCustomer struct {
	FirstName  string `bson:"first_name"`
	LastName   string `bson:"last_name"`
	Email      string `bson:"email"`
	Phone      string `bson:"phone"`
	Address    string `bson:"address"`
	City       string `bson:"city"`
	District   string `bson:"district,omitempty"`
	PostalCode string `bson:"postal_code,omitempty"`
	Country    string `bson:"country,omitempty"`
	Company    string `bson:"company,omitempty"`
	TaxNumber  string `bson:"tax_number,omitempty"`
	TaxOffice  string `bson:"tax_office,omitempty"`
}

type mongoOrderItem struct {
	ProductID string               `bson:"product_id"`
	Title     string               `bson:"title"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
}

type mongoOrder struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Customer       mongoCustomer        `bson:"customer"`
	Items          []mongoOrderItem     `bson:"items"`
	Subtotal       primitive.Decimal128 `bson:"subtotal"`
	Tax            primitive.Decimal128 `bson:"tax"`
	Shipping       primitive.Decimal128 `bson:"shipping"`
	GrandTotal     primitive.Decimal128 `bson:"grand_total"`
	PaymentMethod  string               `bson:"payment_method"`
	ShippingMethod string               `bson:"shipping_method"`
	Status         string               `bson:"status"`
	InvoiceID      string               `bson:"invoice_id,omitempty"`
	PlacedBy       string               `bson:"placed_by,omitempty"`
	Notes          string               `bson:"notes,omitempty"`
	CreatedAt      time.Time            `bson:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at"`
}

func toMongoOrder(o *domain.Order) mongoOrder {
	items := make([]mongoOrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, mongoOrderItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     toDecimal128(it.Price),
		})
	}
	c := o.Customer
	return mongoOrder{
		Customer: mongoCustomer{
			FirstName:  c.FirstName,
			LastName:   c.LastName,
			Email:      c.Email,
			Phone:      c.Phone,
			Address:    c.Address,
			City:       c.City,
			District:   c.District,
			PostalCode: c.PostalCode,
			Country:    c.Country,
			Company:    c.Company,
			TaxNumber:  c.TaxNumber,
			TaxOffice:  c.TaxOffice,
		},
		Items:          items,
		Subtotal:       toDecimal128(o.Subtotal),
		Tax:            toDecimal128(o.Tax),
		Shipping:       toDecimal128(o.Shipping),
		GrandTotal:     toDecimal128(o.GrandTotal),
		PaymentMethod:  string(o.PaymentMethod),
		ShippingMethod: string(o.ShippingMethod),
		Status:         string(o.Status),
		InvoiceID:      o.InvoiceID,
		PlacedBy:       o.PlacedBy,
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (m mongoOrder) toDomain() *domain.Order {
	items := make([]domain.OrderItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     fromDecimal128(it.Price),
		})
	}
	c := m.Customer
	return &domain.Order{
		ID: m.ID.Hex(),
		Customer: domain.Customer{
			FirstName:  c.FirstName,
			LastName:   c.LastName,
			Email:      c.Email,
			Phone:      c.Phone,
			Address:    c.Address,
			City:       c.City,
			District:   c.District,
			PostalCode: c.PostalCode,
			Country:    c.Country,
			Company:    c.Company,
			TaxNumber:  c.TaxNumber,
			TaxOffice:  c.TaxOffice,
		},
		Items:          items,
		Subtotal:       fromDecimal128(m.Subtotal),
		Tax:            fromDecimal128(m.Tax),
		Shipping:       fromDecimal128(m.Shipping),
		GrandTotal:     fromDecimal128(m.GrandTotal),
		PaymentMethod:  domain.PaymentMethod(m.PaymentMethod),
		ShippingMethod: domain.ShippingMethod(m.ShippingMethod),
		Status:         domain.OrderStatus(m.Status),
		InvoiceID:      m.InvoiceID,
		PlacedBy:       m.PlacedBy,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoOrder(o)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	o.ID = doc.ID.Hex()
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := objectID(id, domain.ErrOrderNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoOrder
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *OrderRepository) List(ctx context.Context, filter ports.ListOrdersFilter) ([]*domain.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.PlacedBy != "" {
		q["placed_by"] = filter.PlacedBy
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}

	docs, total, err := findPage[mongoOrder](ctx, r.col, q, filter.Page)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *OrderRepository) LinkInvoice(ctx context.Context, orderID, invoiceID string, at time.Time) error {
	oid, err := objectID(orderID, domain.ErrOrderNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"invoice_id": invoiceID, "updated_at": at}})
	if err != nil {
		return fmt.Errorf("link invoice: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// UpdateStatus is a compare-and-set on the status field. When nothing
// matches it tells a missing order apart from one that has moved on.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) error {
	oid, err := objectID(id, domain.ErrOrderNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updated_at": at}},
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return staleOrMissing(ctx, r.col, oid, domain.ErrOrderNotFound)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the orders collection.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "placed_by", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "invoice_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
