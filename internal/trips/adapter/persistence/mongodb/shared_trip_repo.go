package mongodb

import (
	"context"
	"errors"

	apperrors "tripack/internal/shared/errors"
	"tripack/internal/trips/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSharedTripRepository implements the SharedTripRepository interface
// using MongoDB. Snapshots are insert-only; there is no update path.
type MongoSharedTripRepository struct {
	db               *mongo.Database
	sharedCollection *mongo.Collection
}

// NewMongoSharedTripRepository creates a new MongoDB shared trip repository
func NewMongoSharedTripRepository(db *mongo.Database) *MongoSharedTripRepository {
	return &MongoSharedTripRepository{
		db:               db,
		sharedCollection: db.Collection("sharedTrips"),
	}
}

// Create stores a new snapshot and returns its ID
func (r *MongoSharedTripRepository) Create(ctx context.Context, shared *model.SharedTrip) (string, error) {
	if _, err := r.sharedCollection.InsertOne(ctx, shared); err != nil {
		return "", err
	}
	return shared.ID, nil
}

// GetByID retrieves a snapshot by its public ID
func (r *MongoSharedTripRepository) GetByID(ctx context.Context, sharedID string) (*model.SharedTrip, error) {
	var shared model.SharedTrip
	err := r.sharedCollection.FindOne(ctx, bson.M{"_id": sharedID}).Decode(&shared)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrSharedNotFound
	}
	if err != nil {
		return nil, err
	}
	return &shared, nil
}
