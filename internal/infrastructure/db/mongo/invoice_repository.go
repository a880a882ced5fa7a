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

const collectionInvoices = "invoices"

type InvoiceRepository struct {
	col *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{col: db.Collection(collectionInvoices)}
}

type mongoInvoiceCustomer struct {
	Name    string `bson:"name"`
	Email   string `bson:"email"`
	Phone   string `bson:"phone,omitempty"`
	Address string `bson:"address,omitempty"`
}

type mongoInvoiceItem struct {
	ProductID string               `bson:"product_id,omitempty"`
	Title     string               `bson:"title"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
	Total     primitive.Decimal128 `bson:"total"`
}

type mongoInvoice struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	Number        string               `bson:"number"`
	OrderID       string               `bson:"order_id,omitempty"`
	Customer      mongoInvoiceCustomer `bson:"customer"`
	Items         []mongoInvoiceItem   `bson:"items"`
	Subtotal      primitive.Decimal128 `bson:"subtotal"`
	Tax           primitive.Decimal128 `bson:"tax"`
	Total         primitive.Decimal128 `bson:"total"`
	Status        string               `bson:"status"`
	PaymentMethod string               `bson:"payment_method"`
	DueDate       *time.Time           `bson:"due_date,omitempty"`
	PaidAt        *time.Time           `bson:"paid_at,omitempty"`
	Notes         string               `bson:"notes,omitempty"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

func toMongoInvoiceItems(items []domain.InvoiceItem) []mongoInvoiceItem {
	out := make([]mongoInvoiceItem, 0, len(items))
	for _, it := range items {
		out = append(out, mongoInvoiceItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     toDecimal128(it.Price),
			Total:     toDecimal128(it.Total),
		})
	}
	return out
}

func toMongoInvoice(inv *domain.Invoice) mongoInvoice {
	return mongoInvoice{
		Number:        inv.Number,
		OrderID:       inv.OrderID,
		Customer:      mongoInvoiceCustomer(inv.Customer),
		Items:         toMongoInvoiceItems(inv.Items),
		Subtotal:      toDecimal128(inv.Subtotal),
		Tax:           toDecimal128(inv.Tax),
		Total:         toDecimal128(inv.Total),
		Status:        string(inv.Status),
		PaymentMethod: string(inv.PaymentMethod),
		DueDate:       inv.DueDate,
		PaidAt:        inv.PaidAt,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

func (m mongoInvoice) toDomain() *domain.Invoice {
	items := make([]domain.InvoiceItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.InvoiceItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     fromDecimal128(it.Price),
			Total:     fromDecimal128(it.Total),
		})
	}
	return &domain.Invoice{
		ID:            m.ID.Hex(),
		Number:        m.Number,
		OrderID:       m.OrderID,
		Customer:      domain.InvoiceCustomer(m.Customer),
		Items:         items,
		Subtotal:      fromDecimal128(m.Subtotal),
		Tax:           fromDecimal128(m.Tax),
		Total:         fromDecimal128(m.Total),
		Status:        domain.InvoiceStatus(m.Status),
		PaymentMethod: domain.InvoicePaymentMethod(m.PaymentMethod),
		DueDate:       m.DueDate,
		PaidAt:        m.PaidAt,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoInvoice(inv)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	inv.ID = doc.ID.Hex()
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	oid, err := objectID(id, domain.ErrInvoiceNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *InvoiceRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error) {
	return r.findOne(ctx, bson.M{"order_id": orderID})
}

func (r *InvoiceRepository) findOne(ctx context.Context, filter bson.M) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoInvoice
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *InvoiceRepository) List(ctx context.Context, filter ports.ListInvoicesFilter) ([]*domain.Invoice, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	if filter.OrderID != "" {
		q["order_id"] = filter.OrderID
	}

	docs, total, err := findPage[mongoInvoice](ctx, r.col, q, filter.Page)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Invoice, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

// Update rewrites the editable content. Number, order link, status and
// payment time belong to other operations and are left alone.
func (r *InvoiceRepository) Update(ctx context.Context, inv *domain.Invoice) error {
	oid, err := objectID(inv.ID, domain.ErrInvoiceNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoInvoice(inv)
	set := bson.M{
		"customer":       doc.Customer,
		"items":          doc.Items,
		"subtotal":       doc.Subtotal,
		"tax":            doc.Tax,
		"total":          doc.Total,
		"payment_method": doc.PaymentMethod,
		"notes":          doc.Notes,
		"updated_at":     doc.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if doc.DueDate != nil {
		set["due_date"] = doc.DueDate
	} else {
		update["$unset"] = bson.M{"due_date": ""}
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid, "status": doc.Status}, update)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if res.MatchedCount == 0 {
		return staleOrMissing(ctx, r.col, oid, domain.ErrInvoiceNotFound)
	}
	return nil
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id string, from, to domain.InvoiceStatus, paidAt *time.Time, at time.Time) error {
	oid, err := objectID(id, domain.ErrInvoiceNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": string(to), "updated_at": at}
	if paidAt != nil {
		set["paid_at"] = *paidAt
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid, "status": string(from)}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if res.MatchedCount == 0 {
		return staleOrMissing(ctx, r.col, oid, domain.ErrInvoiceNotFound)
	}
	return nil
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string, expected domain.InvoiceStatus) error {
	oid, err := objectID(id, domain.ErrInvoiceNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid, "status": string(expected)})
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if res.DeletedCount == 0 {
		return staleOrMissing(ctx, r.col, oid, domain.ErrInvoiceNotFound)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the invoices collection.
func (r *InvoiceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
