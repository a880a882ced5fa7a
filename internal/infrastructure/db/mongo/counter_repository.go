package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionCounters = "counters"

// CounterRepository keeps one document per counter key and increments it in
// place.
type CounterRepository struct {
	col *mongo.Collection
}

func NewCounterRepository(db *mongo.Database) *CounterRepository {
	return &CounterRepository{col: db.Collection(collectionCounters)}
}

func (r *CounterRepository) Increment(ctx context.Context, key string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	seq, err := r.increment(ctx, key)
	// Two first increments of a new key can both try to insert; the loser
	// sees a duplicate key and succeeds as a plain update on retry.
	if mongo.IsDuplicateKeyError(err) {
		seq, err = r.increment(ctx, key)
	}
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", key, err)
	}
	return seq, nil
}

func (r *CounterRepository) increment(ctx context.Context, key string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": key}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
