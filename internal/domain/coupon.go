package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Coupon struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code" json:"code"`
	Discount  float64            `bson:"discount" json:"discount"`
	ExpireAt  time.Time          `bson:"expire_at" json:"expireAt"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// NormalizeCode is the stored form of a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpireAt.Before(now)
}

// Active is derived from the expiry on every read; it is never stored.
func (c *Coupon) Active(now time.Time) bool {
	return !c.Expired(now)
}
