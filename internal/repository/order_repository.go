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

type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection("orders")}
}

func (m *MongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
		order.UpdatedAt = order.CreatedAt
	}
	if order.Version == 0 {
		order.Version = 1
	}

	if _, err := m.collection.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (m *MongoOrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoOrderRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	return m.findOne(ctx, bson.M{"payment_result.session_id": sessionID})
}

func (m *MongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	var order domain.Order
	if err := m.collection.FindOne(ctx, filter).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (m *MongoOrderRepository) List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}

	cursor, err := m.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []*domain.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// Update writes the lifecycle fields only if the stored version still equals
// order.Version; the item snapshot and prices are immutable once created. A
// cancelled order is never written again. On success order.Version is advanced.
func (m *MongoOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	set := bson.M{
		"is_paid":      order.IsPaid,
		"paid_at":      order.PaidAt,
		"is_delivered": order.IsDelivered,
		"delivered_at": order.DeliveredAt,
		"is_cancelled": order.IsCancelled,
		"cancelled_at": order.CancelledAt,
		"updated_at":   order.UpdatedAt,
		"version":      order.Version + 1,
	}
	if order.PaymentResult != nil {
		set["payment_result"] = order.PaymentResult
	}
	filter := bson.M{"_id": order.ID, "version": order.Version, "is_cancelled": false}

	res, err := m.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return m.updateMiss(ctx, order.ID)
	}
	order.Version++
	return nil
}

// updateMiss explains why a conditional update matched nothing.
func (m *MongoOrderRepository) updateMiss(ctx context.Context, id primitive.ObjectID) error {
	var current struct {
		IsCancelled bool `bson:"is_cancelled"`
	}
	opts := options.FindOne().SetProjection(bson.M{"is_cancelled": 1})
	if err := m.collection.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&current); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}
	if current.IsCancelled {
		return domain.ErrOrderCancelled
	}
	return ErrOrderConflict
}

func (m *MongoOrderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "payment_result.session_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"payment_result.session_id": bson.M{"$exists": true}}),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}
