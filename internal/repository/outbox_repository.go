package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// published events are kept for a week for replay and debugging
const outboxRetention = 7 * 24 * time.Hour

type MongoOutboxRepository struct {
	collection *mongo.Collection
}

func NewOutboxRepository(db *mongo.Database) *MongoOutboxRepository {
	return &MongoOutboxRepository{collection: db.Collection("outbox")}
}

func (m *MongoOutboxRepository) Add(ctx context.Context, event *OutboxEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	if _, err := m.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to add outbox event: %w", err)
	}
	return nil
}

func (m *MongoOutboxRepository) Pending(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := m.collection.Find(ctx, bson.M{"published_at": nil}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*OutboxEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode outbox events: %w", err)
	}
	return events, nil
}

func (m *MongoOutboxRepository) MarkPublished(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"published_at": at}, "$inc": bson.M{"attempts": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event %s published: %w", id.Hex(), err)
	}
	return nil
}

func (m *MongoOutboxRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	_, err := m.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_error": reason}, "$inc": bson.M{"attempts": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to record outbox failure for %s: %w", id.Hex(), err)
	}
	return nil
}

func (m *MongoOutboxRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "published_at", Value: 1}, {Key: "created_at", Value: 1}},
		},
		{
			// null published_at is never expired
			Keys:    bson.D{{Key: "published_at", Value: 1}},
			Options: options.Index().SetName("published_at_ttl").SetExpireAfterSeconds(int32(outboxRetention.Seconds())),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}
	return nil
}
