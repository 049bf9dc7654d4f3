package domain

import "errors"

var (
	ErrItemNotFound         = errors.New("item not found in cart")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrCouponExpired        = errors.New("coupon has expired")
	ErrCouponAlreadyApplied = errors.New("coupon already applied to this cart")
	ErrCouponLimit          = errors.New("only one coupon can be applied per cart")
	ErrOrderCancelled       = errors.New("order is cancelled")
)
