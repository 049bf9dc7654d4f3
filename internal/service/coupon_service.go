package service

import (
	"context"
	"time"

	"github.com/fjod/go_shop/internal/apperr"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CouponInput carries a create or update. Nil fields are left unchanged on
// update; on create every field is required.
type CouponInput struct {
	Code     *string
	Discount *float64
	ExpireAt *time.Time
}

type CouponService struct {
	coupons repository.CouponRepository
	log     zerolog.Logger
}

func NewCouponService(coupons repository.CouponRepository, log zerolog.Logger) *CouponService {
	return &CouponService{coupons: coupons, log: log}
}

func (s *CouponService) Create(ctx context.Context, in CouponInput) (*domain.Coupon, error) {
	if in.Code == nil || in.Discount == nil || in.ExpireAt == nil {
		return nil, apperr.Validation("code, discount and expireAt are required")
	}

	coupon := &domain.Coupon{}
	if err := applyCouponInput(coupon, in); err != nil {
		return nil, err
	}
	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, translate(err)
	}

	s.log.Info().Str("coupon", coupon.Code).Float64("discount", coupon.Discount).Msg("coupon created")
	return coupon, nil
}

func (s *CouponService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Coupon, error) {
	coupon, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return coupon, nil
}

func (s *CouponService) List(ctx context.Context) ([]*domain.Coupon, error) {
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return coupons, nil
}

func (s *CouponService) Update(ctx context.Context, id primitive.ObjectID, in CouponInput) (*domain.Coupon, error) {
	coupon, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if err := applyCouponInput(coupon, in); err != nil {
		return nil, err
	}
	if err := s.coupons.Update(ctx, coupon); err != nil {
		return nil, translate(err)
	}
	return coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.coupons.Delete(ctx, id); err != nil {
		return translate(err)
	}
	return nil
}

func applyCouponInput(c *domain.Coupon, in CouponInput) error {
	if in.Code != nil {
		code := domain.NormalizeCode(*in.Code)
		if code == "" {
			return apperr.Validation("coupon code is required")
		}
		c.Code = code
	}
	if in.Discount != nil {
		if *in.Discount < 1 || *in.Discount > 100 {
			return apperr.Validation("coupon discount must be between 1 and 100")
		}
		c.Discount = *in.Discount
	}
	if in.ExpireAt != nil {
		c.ExpireAt = in.ExpireAt.UTC()
	}
	return nil
}
