package domain

import (
	"strings"
	"time"

	"github.com/fjod/go_shop/internal/pricing"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart is a user's single shopping cart. Totals are derived from Items and
// are recomputed by every mutating method.
type Cart struct {
	ID                           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                       string             `bson:"user_id" json:"userId"`
	Items                        []CartItem         `bson:"items" json:"items"`
	TotalPrice                   float64            `bson:"total_price" json:"totalPrice"`
	TotalPriceAfterDiscount      float64            `bson:"total_price_after_discount" json:"totalPriceAfterDiscount"`
	TotalPriceAfterCouponApplied float64            `bson:"total_price_after_coupon_applied" json:"totalPriceAfterCouponApplied"`
	TotalItems                   int                `bson:"total_items" json:"totalItems"`
	AppliedCoupon                string             `bson:"applied_coupon,omitempty" json:"appliedCoupon,omitempty"`
	AppliedCouponDiscount        float64            `bson:"applied_coupon_discount" json:"appliedCouponDiscount"`
	Version                      int64              `bson:"version" json:"version"`
	CreatedAt                    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt                    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// CartItem is one product/color/size line. Title, prices and images are
// copied from the product when the line is created.
type CartItem struct {
	ID                 primitive.ObjectID `bson:"_id" json:"id"`
	ProductID          primitive.ObjectID `bson:"product_id" json:"productId"`
	Title              string             `bson:"title" json:"title"`
	Price              float64            `bson:"price" json:"price"`
	PriceAfterDiscount *float64           `bson:"price_after_discount,omitempty" json:"priceAfterDiscount,omitempty"`
	Images             []string           `bson:"images,omitempty" json:"images,omitempty"`
	Quantity           int                `bson:"quantity" json:"quantity"`
	Color              string             `bson:"color,omitempty" json:"color,omitempty"`
	Size               string             `bson:"size,omitempty" json:"size,omitempty"`
}

// ItemMatch identifies a line for a quantity update. Every field must agree.
type ItemMatch struct {
	ItemID    primitive.ObjectID
	ProductID primitive.ObjectID
	Color     string
	Size      string
}

func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) HasCoupon() bool {
	return c.AppliedCoupon != ""
}

// AddItem increments the matching line or appends a new one from the product
// snapshot. Color and size match case-insensitively.
func (c *Cart) AddItem(p *Product, color, size string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	for i := range c.Items {
		it := &c.Items[i]
		if it.ProductID == p.ID && strings.EqualFold(it.Color, color) && strings.EqualFold(it.Size, size) {
			it.Quantity += quantity
			c.Recalculate()
			return nil
		}
	}

	c.Items = append(c.Items, CartItem{
		ID:                 primitive.NewObjectID(),
		ProductID:          p.ID,
		Title:              p.Title,
		Price:              p.Price,
		PriceAfterDiscount: p.PriceAfterDiscount,
		Images:             append([]string(nil), p.Images...),
		Quantity:           quantity,
		Color:              color,
		Size:               size,
	})
	c.Recalculate()
	return nil
}

func (c *Cart) RemoveItem(itemID primitive.ObjectID) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Recalculate()
			return nil
		}
	}
	return ErrItemNotFound
}

func (c *Cart) UpdateQuantity(m ItemMatch, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	for i := range c.Items {
		it := &c.Items[i]
		if it.ID == m.ItemID && it.ProductID == m.ProductID && it.Color == m.Color && it.Size == m.Size {
			it.Quantity = quantity
			c.Recalculate()
			return nil
		}
	}
	return ErrItemNotFound
}

// Clear empties the cart and zeroes every total and coupon field. The
// document itself is kept.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.TotalPrice = 0
	c.TotalPriceAfterDiscount = 0
	c.TotalItems = 0
	c.clearCoupon()
}

// ApplyCoupon checks expiry and the one-coupon rule, then discounts the
// current total by the coupon percentage.
func (c *Cart) ApplyCoupon(cp *Coupon, now time.Time) error {
	if cp.Expired(now) {
		return ErrCouponExpired
	}
	if c.HasCoupon() {
		if strings.EqualFold(c.AppliedCoupon, cp.Code) {
			return ErrCouponAlreadyApplied
		}
		return ErrCouponLimit
	}

	c.AppliedCoupon = cp.Code
	c.AppliedCouponDiscount = cp.Discount
	c.applyCouponDiscount()
	return nil
}

func (c *Cart) RemoveCoupon() {
	c.clearCoupon()
}

// Recalculate rederives the aggregate totals from the lines and reapplies an
// applied coupon. An empty cart loses its coupon.
func (c *Cart) Recalculate() {
	lines := c.lines()
	c.TotalItems = len(c.Items)
	c.TotalPrice = pricing.Round2(pricing.Total(lines))
	c.TotalPriceAfterDiscount = pricing.Round2(pricing.DiscountedTotal(lines))

	if c.IsEmpty() {
		c.clearCoupon()
		return
	}
	if c.HasCoupon() {
		c.applyCouponDiscount()
	}
}

// OrderPrice is the total an order placed from this cart is charged before
// tax and shipping.
func (c *Cart) OrderPrice() float64 {
	return pricing.OrderPrice(c.TotalPrice, c.TotalPriceAfterDiscount, c.TotalPriceAfterCouponApplied)
}

func (c *Cart) applyCouponDiscount() {
	base := pricing.CouponBase(c.TotalPrice, c.TotalPriceAfterDiscount)
	c.TotalPriceAfterCouponApplied = pricing.CouponAdjustedTotal(base, c.AppliedCouponDiscount)
}

func (c *Cart) clearCoupon() {
	c.AppliedCoupon = ""
	c.AppliedCouponDiscount = 0
	c.TotalPriceAfterCouponApplied = 0
}

func (c *Cart) lines() []pricing.Line {
	lines := make([]pricing.Line, len(c.Items))
	for i, it := range c.Items {
		lines[i] = it.line()
	}
	return lines
}

func (it CartItem) line() pricing.Line {
	return pricing.Line{Price: it.Price, PriceAfterDiscount: it.PriceAfterDiscount, Quantity: it.Quantity}
}
