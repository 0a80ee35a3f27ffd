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

// MongoItemRepository implements the ItemRepository interface using MongoDB
type MongoItemRepository struct {
	db              *mongo.Database
	itemsCollection *mongo.Collection
}

// NewMongoItemRepository creates a new MongoDB packing item repository
func NewMongoItemRepository(db *mongo.Database) (*MongoItemRepository, error) {
	repo := &MongoItemRepository{
		db:              db,
		itemsCollection: db.Collection("packingItems"),
	}

	ctx := context.Background()

	// Trip listing index, items in creation order
	tripIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "tripId", Value: 1}, {Key: "createdAt", Value: 1}},
	}
	if _, err := repo.itemsCollection.Indexes().CreateOne(ctx, tripIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// Create inserts a new item document
func (r *MongoItemRepository) Create(ctx context.Context, item *model.PackingItem) error {
	_, err := r.itemsCollection.InsertOne(ctx, item)
	return err
}

// CreateMany inserts a batch of item documents
func (r *MongoItemRepository) CreateMany(ctx context.Context, items []*model.PackingItem) error {
	if len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		docs = append(docs, item)
	}
	_, err := r.itemsCollection.InsertMany(ctx, docs)
	return err
}

// GetByID retrieves an item scoped to its owner and trip
func (r *MongoItemRepository) GetByID(ctx context.Context, userID, tripID, itemID string) (*model.PackingItem, error) {
	var item model.PackingItem
	err := r.itemsCollection.FindOne(ctx, r.itemFilter(userID, tripID, itemID)).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByTrip returns all items of a trip ordered by creation time ascending
func (r *MongoItemRepository) ListByTrip(ctx context.Context, userID, tripID string) ([]model.PackingItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.itemsCollection.Find(ctx, bson.M{"userId": userID, "tripId": tripID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]model.PackingItem, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetImageURL writes the image URL only when still unset, mirroring the
// trip cover write. Returns whether a write happened.
func (r *MongoItemRepository) SetImageURL(ctx context.Context, userID, tripID, itemID, url string) (bool, error) {
	filter := r.itemFilter(userID, tripID, itemID)
	filter["imageUrl"] = ""
	update := bson.M{"$set": bson.M{"imageUrl": url}}

	result, err := r.itemsCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// SetPacked updates the packed flag and returns the updated item
func (r *MongoItemRepository) SetPacked(ctx context.Context, userID, tripID, itemID string, packed bool) (*model.PackingItem, error) {
	return r.findOneAndSet(ctx, userID, tripID, itemID, bson.M{"packed": packed})
}

// SetQuantity updates the quantity and returns the updated item
func (r *MongoItemRepository) SetQuantity(ctx context.Context, userID, tripID, itemID string, quantity int) (*model.PackingItem, error) {
	return r.findOneAndSet(ctx, userID, tripID, itemID, bson.M{"quantity": quantity})
}

// Delete removes an item and returns the deleted document
func (r *MongoItemRepository) Delete(ctx context.Context, userID, tripID, itemID string) (*model.PackingItem, error) {
	var item model.PackingItem
	err := r.itemsCollection.FindOneAndDelete(ctx, r.itemFilter(userID, tripID, itemID)).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MongoItemRepository) findOneAndSet(ctx context.Context, userID, tripID, itemID string, fields bson.M) (*model.PackingItem, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var item model.PackingItem
	err := r.itemsCollection.FindOneAndUpdate(ctx, r.itemFilter(userID, tripID, itemID), bson.M{"$set": fields}, opts).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MongoItemRepository) itemFilter(userID, tripID, itemID string) bson.M {
	return bson.M{"_id": itemID, "userId": userID, "tripId": tripID}
}
