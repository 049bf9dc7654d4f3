package service

import (
	"errors"

	"github.com/fjod/go_shop/internal/apperr"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/payment"
	"github.com/fjod/go_shop/internal/repository"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrNotCartUser = errors.New("cart belongs to another user")
	// ErrCartAlreadyOrdered means a payment session completed for a cart that
	// was emptied by another checkout after the session opened.
	ErrCartAlreadyOrdered = errors.New("cart was checked out before the payment completed")
)

// translate maps repository and domain failures onto the error taxonomy the
// HTTP layer renders. Errors that are already *apperr.Error pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, repository.ErrCartNotFound):
		return apperr.New(apperr.KindNotFound, "there is no cart for this user", err)
	case errors.Is(err, repository.ErrCartConflict):
		return apperr.New(apperr.KindConflict, "cart was changed by another request, please retry", err)
	case errors.Is(err, repository.ErrCouponNotFound):
		return apperr.New(apperr.KindNotFound, "coupon not found", err)
	case errors.Is(err, repository.ErrDuplicateCoupon):
		return apperr.New(apperr.KindConflict, "a coupon with this code already exists", err)
	case errors.Is(err, repository.ErrOrderNotFound):
		return apperr.New(apperr.KindNotFound, "order not found", err)
	case errors.Is(err, repository.ErrProductNotFound):
		return apperr.New(apperr.KindNotFound, "product not found", err)
	case errors.Is(err, repository.ErrOrderConflict):
		return apperr.New(apperr.KindConflict, "order was changed by another request, please retry", err)
	case errors.Is(err, repository.ErrDuplicatePayment):
		return apperr.New(apperr.KindConflict, "an order already exists for this payment", err)
	case errors.Is(err, domain.ErrItemNotFound):
		return apperr.New(apperr.KindNotFound, "item not found in cart", err)
	case errors.Is(err, domain.ErrInvalidQuantity):
		return apperr.New(apperr.KindValidation, "quantity must be at least 1", err)
	case errors.Is(err, domain.ErrCouponExpired):
		return apperr.New(apperr.KindExpired, "coupon has expired", err)
	case errors.Is(err, domain.ErrCouponAlreadyApplied):
		return apperr.New(apperr.KindConflict, "coupon already applied to this cart", err)
	case errors.Is(err, domain.ErrCouponLimit):
		return apperr.New(apperr.KindConflict, "only one coupon can be applied, remove the current one first", err)
	case errors.Is(err, domain.ErrOrderCancelled):
		return apperr.New(apperr.KindConflict, "order is cancelled", err)
	case errors.Is(err, ErrEmptyCart):
		return apperr.New(apperr.KindValidation, "cart is empty", err)
	case errors.Is(err, ErrCartAlreadyOrdered):
		return apperr.New(apperr.KindConflict, "cart was already checked out", err)
	case errors.Is(err, ErrNotCartUser):
		return apperr.New(apperr.KindNotFound, "there is no cart with this id for this user", err)
	case errors.Is(err, payment.ErrInvalidSignature):
		return apperr.New(apperr.KindValidation, "webhook signature verification failed", err)
	case errors.Is(err, payment.ErrUnavailable):
		return apperr.Upstream("payment gateway is unavailable, try again later", err)
	}
	return apperr.Internal("internal server error", err)
}
