package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title              string             `bson:"title" json:"title"`
	Description        string             `bson:"description,omitempty" json:"description,omitempty"`
	Price              float64            `bson:"price" json:"price"`
	PriceAfterDiscount *float64           `bson:"price_after_discount,omitempty" json:"priceAfterDiscount,omitempty"`
	Quantity           int                `bson:"quantity" json:"quantity"`
	Sold               int                `bson:"sold" json:"sold"`
	Images             []string           `bson:"images,omitempty" json:"images,omitempty"`
	Colors             []string           `bson:"colors,omitempty" json:"colors,omitempty"`
	Sizes              []string           `bson:"sizes,omitempty" json:"sizes,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// StockDelta is one product's share of a stock adjustment: Quantity is added
// to the on-hand stock and Sold to the sold counter.
type StockDelta struct {
	ProductID primitive.ObjectID
	Quantity  int
	Sold      int
}
