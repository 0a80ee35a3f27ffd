package mongodb

import (
	"context"
	"errors"

	apperrors "tripack/internal/shared/errors"
	"tripack/internal/trips/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoImageCacheRepository implements the write-once image URL cache on a
// MongoDB collection, one instance per collection ("destinationImages",
// "itemImages"). The subject key is the document _id, so uniqueness needs
// no extra index and a racing create fails with a duplicate key error.
type MongoImageCacheRepository struct {
	collection *mongo.Collection
}

// NewMongoImageCacheRepository creates a cache repository over the named collection
func NewMongoImageCacheRepository(db *mongo.Database, collectionName string) *MongoImageCacheRepository {
	return &MongoImageCacheRepository{
		collection: db.Collection(collectionName),
	}
}

// Get returns the cached URL for a key
func (r *MongoImageCacheRepository) Get(ctx context.Context, key string) (string, error) {
	var entry model.ImageCacheEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", apperrors.ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return entry.URL, nil
}

// PutIfAbsent creates the entry unless one exists and returns the cached
// URL. Losing the create race is not an error: the loser rereads the
// winner's entry and adopts its URL.
func (r *MongoImageCacheRepository) PutIfAbsent(ctx context.Context, key, url string) (string, error) {
	_, err := r.collection.InsertOne(ctx, model.ImageCacheEntry{Key: key, URL: url})
	if err == nil {
		return url, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return "", err
	}
	return r.Get(ctx, key)
}
