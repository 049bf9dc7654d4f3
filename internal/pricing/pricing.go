// Package pricing holds the pure money arithmetic shared by carts and orders.
// Amounts are summed exactly and rounded to two decimals only when stored.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line is the priced view of one cart or order line.
type Line struct {
	Price              float64
	PriceAfterDiscount *float64
	Quantity           int
}

// LineTotal is price × quantity, unrounded.
func LineTotal(l Line) decimal.Decimal {
	return decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// EffectiveUnitPrice returns the discounted price when it is set to a usable
// positive number, the list price otherwise.
func EffectiveUnitPrice(l Line) float64 {
	if d := l.PriceAfterDiscount; d != nil && !math.IsNaN(*d) && !math.IsInf(*d, 0) && *d > 0 {
		return *d
	}
	return l.Price
}

// Total is Σ price × quantity.
func Total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l))
	}
	return sum
}

// DiscountedTotal is Σ effective unit price × quantity.
func DiscountedTotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		unit := decimal.NewFromFloat(EffectiveUnitPrice(l))
		sum = sum.Add(unit.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// CouponAdjustedTotal applies a percentage-off coupon: round2(base − base × pct / 100).
func CouponAdjustedTotal(base, discountPercent float64) float64 {
	b := decimal.NewFromFloat(base)
	off := b.Mul(decimal.NewFromFloat(discountPercent)).Div(hundred)
	return Round2(b.Sub(off))
}

// CouponBase picks the amount a coupon discounts: the discounted total when it
// is non-zero, else the list total.
func CouponBase(total, discountedTotal float64) float64 {
	if discountedTotal != 0 {
		return discountedTotal
	}
	return total
}

// OrderPrice selects the authoritative cart total by precedence:
// coupon-applied > discount-applied > list total. Zero counts as unset.
func OrderPrice(total, discountedTotal, couponTotal float64) float64 {
	if couponTotal != 0 {
		return couponTotal
	}
	if discountedTotal != 0 {
		return discountedTotal
	}
	return total
}

// FinalTotal is round2(orderPrice + tax + shipping).
func FinalTotal(orderPrice, tax, shipping float64) float64 {
	sum := decimal.NewFromFloat(orderPrice).
		Add(decimal.NewFromFloat(tax)).
		Add(decimal.NewFromFloat(shipping))
	return Round2(sum)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// ToMinorUnits converts an amount to integer cents for payment gateways.
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts integer cents back to a major-unit amount.
func FromMinorUnits(amount int64) float64 {
	return decimal.New(amount, -2).InexactFloat64()
}
