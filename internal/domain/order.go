package domain

import (
	"time"

	"github.com/fjod/go_shop/internal/pricing"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

type ShippingAddress struct {
	Details    string `bson:"details" json:"details"`
	Phone      string `bson:"phone" json:"phone"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postal_code,omitempty" json:"postalCode,omitempty"`
}

// PaymentResult is what the payment gateway reported for a card order.
type PaymentResult struct {
	SessionID       string    `bson:"session_id" json:"sessionId"`
	PaymentIntentID string    `bson:"payment_intent_id,omitempty" json:"paymentIntentId,omitempty"`
	Status          string    `bson:"status" json:"status"`
	EmailAddress    string    `bson:"email_address,omitempty" json:"emailAddress,omitempty"`
	// AmountPaid is what the gateway charged, in major units.
	AmountPaid      float64   `bson:"amount_paid" json:"amountPaid"`
	UpdateTime      time.Time `bson:"update_time" json:"updateTime"`
}

type Order struct {
	ID                           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                       string             `bson:"user_id" json:"userId"`
	CartID                       primitive.ObjectID `bson:"cart_id" json:"cartId"`
	Items                        []CartItem         `bson:"items" json:"items"`
	ShippingAddress              ShippingAddress    `bson:"shipping_address" json:"shippingAddress"`
	PaymentMethod                PaymentMethod      `bson:"payment_method" json:"paymentMethodType"`
	PaymentResult                *PaymentResult     `bson:"payment_result,omitempty" json:"paymentResult,omitempty"`
	AppliedCoupon                string             `bson:"applied_coupon,omitempty" json:"appliedCoupon,omitempty"`
	TaxPrice                     float64            `bson:"tax_price" json:"taxPrice"`
	ShippingPrice                float64            `bson:"shipping_price" json:"shippingPrice"`
	TotalPrice                   float64            `bson:"total_price" json:"totalPrice"`
	TotalPriceAfterDiscount      float64            `bson:"total_price_after_discount" json:"totalPriceAfterDiscount"`
	TotalPriceAfterCouponApplied float64            `bson:"total_price_after_coupon_applied" json:"totalPriceAfterCouponApplied"`
	FinalTotal                   float64            `bson:"final_total" json:"finalTotalPriceAfterTaxAndShippingAdded"`
	IsPaid                       bool               `bson:"is_paid" json:"isPaid"`
	PaidAt                       *time.Time         `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	IsDelivered                  bool               `bson:"is_delivered" json:"isDelivered"`
	DeliveredAt                  *time.Time         `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	IsCancelled                  bool               `bson:"is_cancelled" json:"isCancelled"`
	CancelledAt                  *time.Time         `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt                    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt                    time.Time          `bson:"updated_at" json:"updatedAt"`
	Version                      int64              `bson:"version" json:"-"`
}

// Charges are the flat amounts added to every order.
type Charges struct {
	Tax      float64
	Shipping float64
}

// NewOrder snapshots the cart into an unpaid, undelivered order.
func NewOrder(cart *Cart, addr ShippingAddress, method PaymentMethod, charges Charges, now time.Time) *Order {
	items := make([]CartItem, len(cart.Items))
	copy(items, cart.Items)

	return &Order{
		UserID:                       cart.UserID,
		CartID:                       cart.ID,
		Items:                        items,
		ShippingAddress:              addr,
		PaymentMethod:                method,
		AppliedCoupon:                cart.AppliedCoupon,
		TaxPrice:                     charges.Tax,
		ShippingPrice:                charges.Shipping,
		TotalPrice:                   cart.TotalPrice,
		TotalPriceAfterDiscount:      cart.TotalPriceAfterDiscount,
		TotalPriceAfterCouponApplied: cart.TotalPriceAfterCouponApplied,
		FinalTotal:                   pricing.FinalTotal(cart.OrderPrice(), charges.Tax, charges.Shipping),
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}
}

// ReserveStock is the adjustment applied when the order is placed.
func (o *Order) ReserveStock() []StockDelta {
	return o.stockDeltas(-1)
}

// ReleaseStock reverses ReserveStock.
func (o *Order) ReleaseStock() []StockDelta {
	return o.stockDeltas(1)
}

// stockDeltas merges lines of the same product so each product gets one update.
func (o *Order) stockDeltas(sign int) []StockDelta {
	idx := make(map[primitive.ObjectID]int, len(o.Items))
	deltas := make([]StockDelta, 0, len(o.Items))
	for _, it := range o.Items {
		if i, ok := idx[it.ProductID]; ok {
			deltas[i].Quantity += sign * it.Quantity
			deltas[i].Sold -= sign * it.Quantity
			continue
		}
		idx[it.ProductID] = len(deltas)
		deltas = append(deltas, StockDelta{
			ProductID: it.ProductID,
			Quantity:  sign * it.Quantity,
			Sold:      -sign * it.Quantity,
		})
	}
	return deltas
}

func (o *Order) MarkPaid(now time.Time) error {
	if o.IsCancelled {
		return ErrOrderCancelled
	}
	o.IsPaid = true
	o.PaidAt = &now
	o.UpdatedAt = now
	return nil
}

func (o *Order) MarkDelivered(now time.Time) error {
	if o.IsCancelled {
		return ErrOrderCancelled
	}
	o.IsDelivered = true
	o.DeliveredAt = &now
	o.UpdatedAt = now
	return nil
}

// Cancel is terminal; a second call fails so stock is released once.
func (o *Order) Cancel(now time.Time) error {
	if o.IsCancelled {
		return ErrOrderCancelled
	}
	o.IsCancelled = true
	o.CancelledAt = &now
	o.UpdatedAt = now
	return nil
}
