package mongo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/storefront/commerce-api/internal/core/domain"
)

const collectionProducts = "products"

// CatalogReader reads the product catalog, which is owned and written by
// another service. Prices may be stored as double, int or Decimal128.
type CatalogReader struct {
	col *mongo.Collection
}

func NewCatalogReader(db *mongo.Database) *CatalogReader {
	return &CatalogReader{col: db.Collection(collectionProducts)}
}

type mongoProduct struct {
	ID       primitive.ObjectID `bson:"_id"`
	Title    string             `bson:"title"`
	Price    bson.RawValue      `bson:"price"`
	Category string             `bson:"category"`
}

func (r *CatalogReader) FindProducts(ctx context.Context, ids []string) (map[string]domain.ProductSnapshot, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		// Malformed ids are simply absent from the result.
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	out := make(map[string]domain.ProductSnapshot, len(oids))
	if len(oids) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":      bson.M{"$in": oids},
		"isActive": bson.M{"$ne": false},
	}
	opts := options.Find().SetProjection(bson.M{"title": 1, "price": 1, "category": 1})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var p mongoProduct
		if err := cur.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		price, err := priceOf(p.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", p.ID.Hex(), err)
		}
		out[p.ID.Hex()] = domain.ProductSnapshot{
			ID:       p.ID.Hex(),
			Title:    p.Title,
			Price:    price,
			Category: p.Category,
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return out, nil
}

func priceOf(v bson.RawValue) (decimal.Decimal, error) {
	switch v.Type {
	case bsontype.Decimal128:
		return fromDecimal128(v.Decimal128()), nil
	case bsontype.Double:
		return decimal.NewFromFloat(v.Double()), nil
	case bsontype.Int32:
		return decimal.NewFromInt32(v.Int32()), nil
	case bsontype.Int64:
		return decimal.NewFromInt(v.Int64()), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported price type %s", v.Type)
	}
}
