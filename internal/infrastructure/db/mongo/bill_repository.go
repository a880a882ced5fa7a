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

const collectionBills = "bills"

type BillRepository struct {
	col *mongo.Collection
}

func NewBillRepository(db *mongo.Database) *BillRepository {
	return &BillRepository{col: db.Collection(collectionBills)}
}

type mongoBillItem struct {
	ProductID string               `bson:"product_id,omitempty"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
	Total     primitive.Decimal128 `bson:"total"`
}

type mongoShippingAddress struct {
	Street  string `bson:"street"`
	City    string `bson:"city"`
	State   string `bson:"state,omitempty"`
	ZipCode string `bson:"zip_code,omitempty"`
	Country string `bson:"country,omitempty"`
}

type mongoPaymentDetails struct {
	TransactionID string     `bson:"transaction_id,omitempty"`
	PaidAt        *time.Time `bson:"paid_at,omitempty"`
}

type mongoBill struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	Number          string               `bson:"number"`
	OrderID         string               `bson:"order_id,omitempty"`
	CreatedBy       string               `bson:"created_by"`
	Buyer           string               `bson:"buyer"`
	Items           []mongoBillItem      `bson:"items"`
	TotalAmount     primitive.Decimal128 `bson:"total_amount"`
	PaymentMethod   string               `bson:"payment_method"`
	ShippingAddress mongoShippingAddress `bson:"shipping_address"`
	PaymentDetails  mongoPaymentDetails  `bson:"payment_details"`
	Status          string               `bson:"status"`
	Notes           string               `bson:"notes,omitempty"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

func toMongoBill(b *domain.Bill) mongoBill {
	items := make([]mongoBillItem, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, mongoBillItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: toDecimal128(it.UnitPrice),
			Total:     toDecimal128(it.Total),
		})
	}
	return mongoBill{
		Number:          b.Number,
		OrderID:         b.OrderID,
		CreatedBy:       b.CreatedBy,
		Buyer:           b.Buyer,
		Items:           items,
		TotalAmount:     toDecimal128(b.TotalAmount),
		PaymentMethod:   string(b.PaymentMethod),
		ShippingAddress: mongoShippingAddress(b.ShippingAddress),
		PaymentDetails:  mongoPaymentDetails(b.PaymentDetails),
		Status:          string(b.Status),
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (m mongoBill) toDomain() *domain.Bill {
	items := make([]domain.BillItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.BillItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: fromDecimal128(it.UnitPrice),
			Total:     fromDecimal128(it.Total),
		})
	}
	return &domain.Bill{
		ID:              m.ID.Hex(),
		Number:          m.Number,
		OrderID:         m.OrderID,
		CreatedBy:       m.CreatedBy,
		Buyer:           m.Buyer,
		Items:           items,
		TotalAmount:     fromDecimal128(m.TotalAmount),
		PaymentMethod:   domain.BillPaymentMethod(m.PaymentMethod),
		ShippingAddress: domain.ShippingAddress(m.ShippingAddress),
		PaymentDetails:  domain.PaymentDetails(m.PaymentDetails),
		Status:          domain.BillStatus(m.Status),
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (r *BillRepository) Create(ctx context.Context, b *domain.Bill) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoBill(b)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("insert bill: %w", err)
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (r *BillRepository) FindByID(ctx context.Context, id string) (*domain.Bill, error) {
	oid, err := objectID(id, domain.ErrBillNotFound)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoBill
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBillNotFound
		}
		return nil, fmt.Errorf("find bill: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BillRepository) List(ctx context.Context, filter ports.ListBillsFilter) ([]*domain.Bill, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.CreatedBy != "" {
		q["created_by"] = filter.CreatedBy
	}
	if filter.OrderID != "" {
		q["order_id"] = filter.OrderID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}

	docs, total, err := findPage[mongoBill](ctx, r.col, q, filter.Page)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Bill, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *BillRepository) Update(ctx context.Context, b *domain.Bill) error {
	oid, err := objectID(b.ID, domain.ErrBillNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoBill(b)
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": doc.Status},
		bson.M{"$set": bson.M{
			"buyer":            doc.Buyer,
			"items":            doc.Items,
			"total_amount":     doc.TotalAmount,
			"payment_method":   doc.PaymentMethod,
			"shipping_address": doc.ShippingAddress,
			"notes":            doc.Notes,
			"updated_at":       doc.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if res.MatchedCount == 0 {
		return staleOrMissing(ctx, r.col, oid, domain.ErrBillNotFound)
	}
	return nil
}

func (r *BillRepository) UpdateStatus(ctx context.Context, id string, from, to domain.BillStatus, payment *domain.PaymentDetails, at time.Time) error {
	oid, err := objectID(id, domain.ErrBillNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": string(to), "updated_at": at}
	if payment != nil {
		set["payment_details"] = mongoPaymentDetails(*payment)
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid, "status": string(from)}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update bill status: %w", err)
	}
	if res.MatchedCount == 0 {
		return staleOrMissing(ctx, r.col, oid, domain.ErrBillNotFound)
	}
	return nil
}

func (r *BillRepository) Delete(ctx context.Context, id string, expected domain.BillStatus) error {
	oid, err := objectID(id, domain.ErrBillNotFound)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid, "status": string(expected)})
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if res.DeletedCount == 0 {
		return staleOrMissing(ctx, r.col, oid, domain.ErrBillNotFound)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the bills collection.
func (r *BillRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
