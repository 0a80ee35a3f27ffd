package mongodb

import (
	"context"
	"errors"
	"time"

	"tripack/internal/auth/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAuthRepository implements the AuthRepository interface using MongoDB
type MongoAuthRepository struct {
	db              *mongo.Database
	usersCollection *mongo.Collection
}

// NewMongoAuthRepository creates a new MongoDB auth repository
func NewMongoAuthRepository(db *mongo.Database) (*MongoAuthRepository, error) {
	repo := &MongoAuthRepository{
		db:              db,
		usersCollection: db.Collection("users"),
	}

	ctx := context.Background()

	// Email index for users (unique)
	emailIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.usersCollection.Indexes().CreateOne(ctx, emailIndex); err != nil {
		return nil, err
	}

	// ID index for users (for UUID lookups)
	idIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetSparse(true),
	}
	if _, err := repo.usersCollection.Indexes().CreateOne(ctx, idIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// CreateUser creates a new user in the database
func (r *MongoAuthRepository) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.usersCollection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return model.ErrUserExists
	}
	return err
}

// GetUserByEmail retrieves a user by email
func (r *MongoAuthRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.usersCollection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by its UUID
func (r *MongoAuthRepository) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.usersCollection.FindOne(ctx, bson.M{"id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
