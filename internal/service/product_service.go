package service

import (
	"context"
	"math"
	"strings"

	"github.com/fjod/go_shop/internal/apperr"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ProductInput struct {
	Title              string
	Description        string
	Price              float64
	PriceAfterDiscount *float64
	Quantity           int
	Images             []string
	Colors             []string
	Sizes              []string
}

type ProductPage struct {
	Items []*domain.Product `json:"data"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int64             `json:"total"`
	Pages int               `json:"pages"`
}

type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	p := &domain.Product{
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		Price:              in.Price,
		PriceAfterDiscount: in.PriceAfterDiscount,
		Quantity:           in.Quantity,
		Images:             in.Images,
		Colors:             in.Colors,
		Sizes:              in.Sizes,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// List clamps page to ≥1 and limit to [1, 100], defaulting to 20.
func (s *ProductService) List(ctx context.Context, page, limit int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, total, err := s.products.List(ctx, page, limit)
	if err != nil {
		return nil, translate(err)
	}
	return &ProductPage{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *ProductService) SetStock(ctx context.Context, id primitive.ObjectID, quantity int) (*domain.Product, error) {
	if quantity < 0 {
		return nil, apperr.Validation("quantity cannot be negative")
	}
	p, err := s.products.SetQuantity(ctx, id, quantity)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func validateProduct(in ProductInput) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return apperr.Validation("product title is required")
	case in.Price <= 0 || math.IsNaN(in.Price):
		return apperr.Validation("product price must be positive")
	case in.PriceAfterDiscount != nil && (*in.PriceAfterDiscount <= 0 || *in.PriceAfterDiscount >= in.Price):
		return apperr.Validation("priceAfterDiscount must be positive and lower than price")
	case in.Quantity < 0:
		return apperr.Validation("quantity cannot be negative")
	}
	return nil
}
