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

type MongoCouponRepository struct {
	collection *mongo.Collection
}

func NewCouponRepository(db *mongo.Database) *MongoCouponRepository {
	return &MongoCouponRepository{collection: db.Collection("coupons")}
}

func (m *MongoCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	now := time.Now().UTC()
	coupon.ID = primitive.NewObjectID()
	coupon.Code = domain.NormalizeCode(coupon.Code)
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	if _, err := m.collection.InsertOne(ctx, coupon); err != nil {
		coupon.ID = primitive.NilObjectID
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCoupon
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

func (m *MongoCouponRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Coupon, error) {
	return m.findOne(ctx, bson.M{"_id": id})
}

func (m *MongoCouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return m.findOne(ctx, bson.M{"code": domain.NormalizeCode(code)})
}

func (m *MongoCouponRepository) findOne(ctx context.Context, filter bson.M) (*domain.Coupon, error) {
	var coupon domain.Coupon
	if err := m.collection.FindOne(ctx, filter).Decode(&coupon); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &coupon, nil
}

func (m *MongoCouponRepository) List(ctx context.Context) ([]*domain.Coupon, error) {
	cursor, err := m.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer cursor.Close(ctx)

	coupons := []*domain.Coupon{}
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, fmt.Errorf("failed to decode coupons: %w", err)
	}
	return coupons, nil
}

func (m *MongoCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	coupon.Code = domain.NormalizeCode(coupon.Code)
	coupon.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"code":       coupon.Code,
		"discount":   coupon.Discount,
		"expire_at":  coupon.ExpireAt,
		"updated_at": coupon.UpdatedAt,
	}}
	res, err := m.collection.UpdateOne(ctx, bson.M{"_id": coupon.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCoupon
		}
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (m *MongoCouponRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (m *MongoCouponRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create coupon indexes: %w", err)
	}
	return nil
}
