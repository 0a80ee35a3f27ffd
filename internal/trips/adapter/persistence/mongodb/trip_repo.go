// Package mongodb implements the trips module's persistence contracts on
// MongoDB collections.
package mongodb

import (
	"context"
	"errors"

	apperrors "tripack/internal/shared/errors"
	"tripack/internal/trips/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTripRepository implements the TripRepository interface using MongoDB
type MongoTripRepository struct {
	db              *mongo.Database
	tripsCollection *mongo.Collection
}

// NewMongoTripRepository creates a new MongoDB trip repository
func NewMongoTripRepository(db *mongo.Database) (*MongoTripRepository, error) {
	repo := &MongoTripRepository{
		db:              db,
		tripsCollection: db.Collection("trips"),
	}

	ctx := context.Background()

	// Owner listing index, newest trips first
	ownerIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	}
	if _, err := repo.tripsCollection.Indexes().CreateOne(ctx, ownerIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// Create inserts a new trip document
func (r *MongoTripRepository) Create(ctx context.Context, trip *model.Trip) error {
	_, err := r.tripsCollection.InsertOne(ctx, trip)
	return err
}

// GetByID retrieves a trip scoped to its owner
func (r *MongoTripRepository) GetByID(ctx context.Context, userID, tripID string) (*model.Trip, error) {
	var trip model.Trip
	err := r.tripsCollection.FindOne(ctx, bson.M{"_id": tripID, "userId": userID}).Decode(&trip)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// ListByUser returns all trips for a user ordered by creation time descending
func (r *MongoTripRepository) ListByUser(ctx context.Context, userID string) ([]model.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.tripsCollection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trips := make([]model.Trip, 0)
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// SetCoverImageURL writes the cover image URL only when still unset. The
// filter on the empty field makes the write a no-op once a cover exists, so
// concurrent enrichers cannot overwrite each other.
func (r *MongoTripRepository) SetCoverImageURL(ctx context.Context, userID, tripID, url string) (bool, error) {
	filter := bson.M{"_id": tripID, "userId": userID, "coverImageUrl": ""}
	update := bson.M{"$set": bson.M{"coverImageUrl": url}}

	result, err := r.tripsCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// SetProgress overwrites the derived item counters on a trip
func (r *MongoTripRepository) SetProgress(ctx context.Context, userID, tripID string, total, packed int) error {
	filter := bson.M{"_id": tripID, "userId": userID}
	update := bson.M{"$set": bson.M{"totalItemsCount": total, "packedItemsCount": packed}}

	result, err := r.tripsCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrTripNotFound
	}
	return nil
}
