package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nguyentranbao-ct/chat-timeline/internal/models"
)

type entity interface {
	CollectionName() string
}

// baseRepo holds the generic collection plumbing shared by the typed
// repositories.
type baseRepo[E entity] struct {
	coll *mongo.Collection
}

func newBaseRepo[E entity](db *DB) baseRepo[E] {
	var e E
	return baseRepo[E]{
		coll: db.Database.Collection(e.CollectionName()),
	}
}

func (r *baseRepo[E]) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]E, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	var entities []E
	if err := cursor.All(ctx, &entities); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return entities, nil
}

func (r *baseRepo[E]) FindOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*E, error) {
	var e E
	err := r.coll.FindOne(ctx, filter, opts...).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *baseRepo[E]) UpsertOne(ctx context.Context, filter bson.M, e E) error {
	update := bson.M{"$set": e}
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	return nil
}

func (r *baseRepo[E]) UpdateMany(ctx context.Context, filter bson.M, update bson.M) error {
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("update many: %w", err)
	}
	return nil
}

func (r *baseRepo[E]) UpdateOne(ctx context.Context, filter bson.M, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update one: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *baseRepo[E]) DeleteMany(ctx context.Context, filter bson.M) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete many: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *baseRepo[E]) Count(ctx context.Context, filter bson.M) (int64, error) {
	return r.coll.CountDocuments(ctx, filter)
}

func (r *baseRepo[E]) ensureIndexes(ctx context.Context, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", r.coll.Name(), err)
	}
	return nil
}
