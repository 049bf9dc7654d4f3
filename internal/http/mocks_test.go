package http

import (
	"context"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/payment"
	"github.com/fjod/go_shop/internal/service"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type cartServiceMock struct {
	cart *domain.Cart
	err  error

	userID   string
	addInput service.AddItemInput
	match    domain.ItemMatch
	quantity int
	itemID   primitive.ObjectID
	code     string
}

func (m *cartServiceMock) result() (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cart, nil
}

func (m *cartServiceMock) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	m.userID = userID
	return m.result()
}

func (m *cartServiceMock) AddItem(ctx context.Context, userID string, in service.AddItemInput) (*domain.Cart, error) {
	m.userID, m.addInput = userID, in
	return m.result()
}

func (m *cartServiceMock) RemoveItem(ctx context.Context, userID string, itemID primitive.ObjectID) (*domain.Cart, error) {
	m.userID, m.itemID = userID, itemID
	return m.result()
}

func (m *cartServiceMock) UpdateQuantity(ctx context.Context, userID string, match domain.ItemMatch, quantity int) (*domain.Cart, error) {
	m.userID, m.match, m.quantity = userID, match, quantity
	return m.result()
}

func (m *cartServiceMock) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	m.userID = userID
	return m.result()
}

func (m *cartServiceMock) ApplyCoupon(ctx context.Context, userID, code string) (*domain.Cart, error) {
	m.userID, m.code = userID, code
	return m.result()
}

func (m *cartServiceMock) RemoveCoupon(ctx context.Context, userID string) (*domain.Cart, error) {
	m.userID = userID
	return m.result()
}

type couponServiceMock struct {
	coupon *domain.Coupon
	err    error
	input  service.CouponInput
	id     primitive.ObjectID
}

func (m *couponServiceMock) Create(ctx context.Context, in service.CouponInput) (*domain.Coupon, error) {
	m.input = in
	return m.coupon, m.err
}

func (m *couponServiceMock) Get(ctx context.Context, id primitive.ObjectID) (*domain.Coupon, error) {
	m.id = id
	return m.coupon, m.err
}

func (m *couponServiceMock) List(ctx context.Context) ([]*domain.Coupon, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []*domain.Coupon{m.coupon}, nil
}

func (m *couponServiceMock) Update(ctx context.Context, id primitive.ObjectID, in service.CouponInput) (*domain.Coupon, error) {
	m.id, m.input = id, in
	return m.coupon, m.err
}

func (m *couponServiceMock) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.id = id
	return m.err
}

type productServiceMock struct {
	product     *domain.Product
	page        *service.ProductPage
	err         error
	input       service.ProductInput
	listPage    int
	listLimit   int
	stockAmount int
}

func (m *productServiceMock) Create(ctx context.Context, in service.ProductInput) (*domain.Product, error) {
	m.input = in
	return m.product, m.err
}

func (m *productServiceMock) Get(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	return m.product, m.err
}

func (m *productServiceMock) List(ctx context.Context, page, limit int) (*service.ProductPage, error) {
	m.listPage, m.listLimit = page, limit
	return m.page, m.err
}

func (m *productServiceMock) SetStock(ctx context.Context, id primitive.ObjectID, quantity int) (*domain.Product, error) {
	m.stockAmount = quantity
	return m.product, m.err
}

type orderServiceMock struct {
	order  *domain.Order
	err    error
	actor  service.Actor
	userID string
	cartID primitive.ObjectID
	addr   domain.ShippingAddress
	calls  []string
}

func (m *orderServiceMock) CreateCashOrder(ctx context.Context, userID string, cartID primitive.ObjectID, addr domain.ShippingAddress) (*domain.Order, error) {
	m.calls = append(m.calls, "cash")
	m.userID, m.cartID, m.addr = userID, cartID, addr
	return m.order, m.err
}

func (m *orderServiceMock) MarkPaid(ctx context.Context, orderID primitive.ObjectID) (*domain.Order, error) {
	m.calls = append(m.calls, "pay")
	return m.order, m.err
}

func (m *orderServiceMock) MarkDelivered(ctx context.Context, orderID primitive.ObjectID) (*domain.Order, error) {
	m.calls = append(m.calls, "deliver")
	return m.order, m.err
}

func (m *orderServiceMock) Cancel(ctx context.Context, actor service.Actor, orderID primitive.ObjectID) (*domain.Order, error) {
	m.calls = append(m.calls, "cancel")
	m.actor = actor
	return m.order, m.err
}

func (m *orderServiceMock) Get(ctx context.Context, actor service.Actor, orderID primitive.ObjectID) (*domain.Order, error) {
	m.calls = append(m.calls, "get")
	m.actor = actor
	return m.order, m.err
}

func (m *orderServiceMock) List(ctx context.Context, actor service.Actor) ([]*domain.Order, error) {
	m.calls = append(m.calls, "list")
	m.actor = actor
	if m.err != nil {
		return nil, m.err
	}
	return []*domain.Order{m.order}, nil
}

type checkoutServiceMock struct {
	session   *payment.Session
	order     *domain.Order
	err       error
	addr      domain.ShippingAddress
	payload   []byte
	signature string
}

func (m *checkoutServiceMock) CreateCheckoutSession(ctx context.Context, actor service.Actor, cartID primitive.ObjectID, addr domain.ShippingAddress) (*payment.Session, error) {
	m.addr = addr
	return m.session, m.err
}

func (m *checkoutServiceMock) HandleWebhook(ctx context.Context, payload []byte, signature string) (*domain.Order, error) {
	m.payload, m.signature = payload, signature
	return m.order, m.err
}
