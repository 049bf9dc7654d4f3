package service

import (
	"context"
	"sync"

	"github.com/fjod/go_shop/internal/cache"
	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/events"
	"github.com/fjod/go_shop/internal/payment"
	"github.com/fjod/go_shop/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func cloneCart(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	return &cp
}

// mockCartRepo keeps carts in memory with the same version check as Mongo.
type mockCartRepo struct {
	m       sync.RWMutex
	carts   map[primitive.ObjectID]*domain.Cart
	saveErr error
	saves   int
}

func newMockCartRepo(carts ...*domain.Cart) *mockCartRepo {
	r := &mockCartRepo{carts: map[primitive.ObjectID]*domain.Cart{}}
	for _, c := range carts {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		if c.Version == 0 {
			c.Version = 1
		}
		r.carts[c.ID] = cloneCart(c)
	}
	return r
}

func (r *mockCartRepo) GetByUser(_ context.Context, userID string) (*domain.Cart, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	for _, c := range r.carts {
		if c.UserID == userID {
			return cloneCart(c), nil
		}
	}
	return nil, repository.ErrCartNotFound
}

func (r *mockCartRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Cart, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	c, ok := r.carts[id]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (r *mockCartRepo) Save(_ context.Context, c *domain.Cart) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
		c.Version = 1
		r.carts[c.ID] = cloneCart(c)
		return nil
	}
	stored, ok := r.carts[c.ID]
	if !ok || stored.Version != c.Version {
		return repository.ErrCartConflict
	}
	c.Version++
	r.carts[c.ID] = cloneCart(c)
	return nil
}

func (r *mockCartRepo) stored(id primitive.ObjectID) *domain.Cart {
	r.m.RLock()
	defer r.m.RUnlock()
	return cloneCart(r.carts[id])
}

type mockProductRepo struct {
	m         sync.RWMutex
	products  map[primitive.ObjectID]*domain.Product
	adjustErr error
}

func newMockProductRepo(products ...*domain.Product) *mockProductRepo {
	r := &mockProductRepo{products: map[primitive.ObjectID]*domain.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *mockProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.m.Lock()
	defer r.m.Unlock()
	p.ID = primitive.NewObjectID()
	r.products[p.ID] = p
	return nil
}

func (r *mockProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.Product, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *mockProductRepo) List(_ context.Context, page, limit int) ([]*domain.Product, int64, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	all := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p)
	}
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *mockProductRepo) SetQuantity(_ context.Context, id primitive.ObjectID, quantity int) (*domain.Product, error) {
	r.m.Lock()
	defer r.m.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.Quantity = quantity
	cp := *p
	return &cp, nil
}

func (r *mockProductRepo) AdjustStock(_ context.Context, deltas []domain.StockDelta) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.adjustErr != nil {
		return r.adjustErr
	}
	for _, d := range deltas {
		if p, ok := r.products[d.ProductID]; ok {
			p.Quantity += d.Quantity
			p.Sold += d.Sold
		}
	}
	return nil
}

type mockCouponRepo struct {
	m       sync.RWMutex
	coupons map[primitive.ObjectID]*domain.Coupon
}

func newMockCouponRepo(coupons ...*domain.Coupon) *mockCouponRepo {
	r := &mockCouponRepo{coupons: map[primitive.ObjectID]*domain.Coupon{}}
	for _, c := range coupons {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		r.coupons[c.ID] = c
	}
	return r
}

func (r *mockCouponRepo) Create(_ context.Context, c *domain.Coupon) error {
	r.m.Lock()
	defer r.m.Unlock()
	for _, existing := range r.coupons {
		if existing.Code == domain.NormalizeCode(c.Code) {
			return repository.ErrDuplicateCoupon
		}
	}
	c.ID = primitive.NewObjectID()
	c.Code = domain.NormalizeCode(c.Code)
	r.coupons[c.ID] = c
	return nil
}

func (r *mockCouponRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Coupon, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	c, ok := r.coupons[id]
	if !ok {
		return nil, repository.ErrCouponNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *mockCouponRepo) GetByCode(_ context.Context, code string) (*domain.Coupon, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	for _, c := range r.coupons {
		if c.Code == domain.NormalizeCode(code) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrCouponNotFound
}

func (r *mockCouponRepo) List(context.Context) ([]*domain.Coupon, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	out := make([]*domain.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		out = append(out, c)
	}
	return out, nil
}

func (r *mockCouponRepo) Update(_ context.Context, c *domain.Coupon) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.coupons[c.ID]; !ok {
		return repository.ErrCouponNotFound
	}
	cp := *c
	r.coupons[c.ID] = &cp
	return nil
}

func (r *mockCouponRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.coupons[id]; !ok {
		return repository.ErrCouponNotFound
	}
	delete(r.coupons, id)
	return nil
}

type mockOrderRepo struct {
	m         sync.RWMutex
	orders    map[primitive.ObjectID]*domain.Order
	createErr error
	updateErr error
}

func newMockOrderRepo(orders ...*domain.Order) *mockOrderRepo {
	r := &mockOrderRepo{orders: map[primitive.ObjectID]*domain.Order{}}
	for _, o := range orders {
		if o.ID.IsZero() {
			o.ID = primitive.NewObjectID()
		}
		cp := *o
		r.orders[o.ID] = &cp
	}
	return r
}

func (r *mockOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if o.PaymentResult != nil {
		for _, existing := range r.orders {
			if existing.PaymentResult != nil && existing.PaymentResult.SessionID == o.PaymentResult.SessionID {
				return repository.ErrDuplicatePayment
			}
		}
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.Version == 0 {
		o.Version = 1
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *mockOrderRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *mockOrderRepo) GetBySessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	for _, o := range r.orders {
		if o.PaymentResult != nil && o.PaymentResult.SessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (r *mockOrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*domain.Order, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	out := []*domain.Order{}
	for _, o := range r.orders {
		if f.UserID == "" || o.UserID == f.UserID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *mockOrderRepo) Update(_ context.Context, o *domain.Order) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.orders[o.ID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if stored.IsCancelled {
		return domain.ErrOrderCancelled
	}
	if stored.Version != o.Version {
		return repository.ErrOrderConflict
	}
	o.Version++
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *mockOrderRepo) count() int {
	r.m.RLock()
	defer r.m.RUnlock()
	return len(r.orders)
}

type mockCache struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	getErr  error
	gets    int
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{carts: map[string]*domain.Cart{}}
}

func (c *mockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	cart, ok := c.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (c *mockCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.carts[userID] = cart
	return nil
}

func (c *mockCache) Delete(_ context.Context, userID string) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.deletes++
	delete(c.carts, userID)
	return nil
}

func (c *mockCache) has(userID string) bool {
	c.m.RLock()
	defer c.m.RUnlock()
	_, ok := c.carts[userID]
	return ok
}

type mockPublisher struct {
	m      sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	p.m.Lock()
	defer p.m.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *mockPublisher) types() []string {
	p.m.Lock()
	defer p.m.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type mockGateway struct {
	m         sync.Mutex
	requests  []payment.SessionRequest
	createErr error
	event     *payment.WebhookEvent
	parseErr  error
}

func (g *mockGateway) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	g.m.Lock()
	defer g.m.Unlock()
	g.requests = append(g.requests, req)
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &payment.Session{ID: "cs_test_1", URL: "https://pay.test/cs_test_1"}, nil
}

func (g *mockGateway) ParseWebhook([]byte, string) (*payment.WebhookEvent, error) {
	return g.event, g.parseErr
}
