package service

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

type AddItemInput struct {
	ProductID primitive.ObjectID
	Color     string
	Size      string
	Quantity  int
}

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	coupons  repository.CouponRepository
	cache    cache.CartCache
	sfg      singleflight.Group // collapses concurrent cache misses per user
	log      zerolog.Logger
	now      func() time.Time
}

func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	coupons repository.CouponRepository,
	cartCache cache.CartCache,
	log zerolog.Logger,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		coupons:  coupons,
		cache:    cartCache,
		log:      log,
		now:      time.Now,
	}
}

// GetCart serves the user's cart through the cache. A missing or empty cart
// is NotFound on this read path.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("cart cache get failed")
		}

		cart, err = s.carts.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		s.setCache(ctx, userID, cart)
		return cart, nil
	})
	if err != nil {
		return nil, translate(err)
	}

	cart := v.(*domain.Cart)
	if cart.IsEmpty() {
		return nil, translate(repository.ErrCartNotFound)
	}
	return cart, nil
}

// AddItem creates the user's cart on first use.
func (s *CartService) AddItem(ctx context.Context, userID string, in AddItemInput) (*domain.Cart, error) {
	product, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, translate(err)
	}

	return s.mutate(ctx, userID, true, func(c *domain.Cart) error {
		return c.AddItem(product, in.Color, in.Size, in.Quantity)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, itemID primitive.ObjectID) (*domain.Cart, error) {
	return s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		return c.RemoveItem(itemID)
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID string, match domain.ItemMatch, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		return c.UpdateQuantity(match, quantity)
	})
}

func (s *CartService) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
}

func (s *CartService) ApplyCoupon(ctx context.Context, userID, code string) (*domain.Cart, error) {
	coupon, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, translate(err)
	}

	return s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		if c.IsEmpty() {
			return ErrEmptyCart
		}
		return c.ApplyCoupon(coupon, s.now())
	})
}

func (s *CartService) RemoveCoupon(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, false, func(c *domain.Cart) error {
		c.RemoveCoupon()
		return nil
	})
}

// mutate loads the stored cart, applies fn and saves it with a version check.
// Reads for writes bypass the cache so the version is current.
func (s *CartService) mutate(ctx context.Context, userID string, create bool, fn func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) && create {
		cart, err = domain.NewCart(userID), nil
	}
	if err != nil {
		return nil, translate(err)
	}

	if err := fn(cart); err != nil {
		return nil, translate(err)
	}

	if err := s.carts.Save(ctx, cart); err != nil {
		if errors.Is(err, repository.ErrCartConflict) {
			s.log.Info().Str("user_id", userID).Msg("cart save lost a concurrent update")
		}
		return nil, translate(err)
	}

	s.invalidate(ctx, userID)
	return cart, nil
}

func (s *CartService) setCache(ctx context.Context, userID string, cart *domain.Cart) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Set(ctx, userID, cart); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("cart cache set failed")
	}
}

func (s *CartService) invalidate(ctx context.Context, userID string) {
	invalidateCart(ctx, s.cache, s.log, userID)
}

func invalidateCart(ctx context.Context, c cache.CartCache, log zerolog.Logger, userID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := c.Delete(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("cart cache invalidate failed")
	}
}
