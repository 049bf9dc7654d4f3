package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{collection: db.Collection("carts")}
}

func (m *MongoCartRepository) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return m.findOne(ctx, bson.M{"user_id": userID})
}

func (m *MongoCartRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Cart, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoCartRepository) findOne(ctx context.Context, filter bson.M) (*domain.Cart, error) {
	var cart domain.Cart
	err := m.collection.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

// Save inserts a new cart or replaces an existing one if its stored version
// still equals cart.Version. On success cart.Version is advanced.
func (m *MongoCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	now := time.Now().UTC()

	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
		cart.Version = 1
		cart.CreatedAt = now
		cart.UpdatedAt = now

		if _, err := m.collection.InsertOne(ctx, cart); err != nil {
			cart.ID = primitive.NilObjectID
			cart.Version = 0
			if mongo.IsDuplicateKeyError(err) {
				// another request created this user's cart first
				return ErrCartConflict
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		return nil
	}

	expected := cart.Version
	prevUpdated := cart.UpdatedAt
	cart.Version = expected + 1
	cart.UpdatedAt = now

	res, err := m.collection.ReplaceOne(ctx, bson.M{"_id": cart.ID, "version": expected}, cart)
	if err != nil {
		cart.Version, cart.UpdatedAt = expected, prevUpdated
		return fmt.Errorf("failed to save cart: %w", err)
	}
	if res.MatchedCount == 0 {
		cart.Version, cart.UpdatedAt = expected, prevUpdated
		return ErrCartConflict
	}
	return nil
}

func (m *MongoCartRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}
