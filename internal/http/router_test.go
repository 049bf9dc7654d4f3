package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type routerFixture struct {
	handler  http.Handler
	cart     *cartServiceMock
	orders   *orderServiceMock
	coupons  *couponServiceMock
	checkout *checkoutServiceMock
}

func newRouterFixture() *routerFixture {
	cfg := testConfig()
	f := &routerFixture{
		cart:     &cartServiceMock{cart: sampleCart()},
		orders:   &orderServiceMock{order: sampleOrder()},
		coupons:  &couponServiceMock{coupon: &domain.Coupon{ID: primitive.NewObjectID(), Code: "SAVE20"}},
		checkout: &checkoutServiceMock{},
	}
	f.handler = NewRouter(RouterDeps{
		Auth:     NewAuthenticator(testSecret, cfg),
		Cart:     NewCartHandler(f.cart, cfg),
		Coupons:  NewCouponHandler(f.coupons, cfg),
		Products: NewProductHandler(&productServiceMock{}, cfg),
		Orders:   NewOrdersHandler(f.orders, cfg),
		Stripe:   NewStripeHandler(f.checkout, cfg),
		Config:   cfg,
	})
	return f
}

func signToken(t *testing.T, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func tokenFor(t *testing.T, userID, role string) string {
	return signToken(t, jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
}

func (f *routerFixture) do(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(t, method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture()
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestRouter_Authentication(t *testing.T) {
	expired := signToken(t, jwt.SigningMethodHS256, Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	wrongAlg := signToken(t, jwt.SigningMethodHS384, Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	noExpiry := signToken(t, jwt.SigningMethodHS256, Claims{UserID: "user-1"})
	noUser := signToken(t, jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"expired", expired},
		{"wrong algorithm", wrongAlg},
		{"no expiry", noExpiry},
		{"no user", noUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture()
			rec := f.do(t, http.MethodGet, "/cart", tt.token, nil)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeError(t, rec).Code)
			assert.Empty(t, f.cart.userID)
		})
	}
}

func TestRouter_CartUsesTokenUser(t *testing.T) {
	f := newRouterFixture()
	rec := f.do(t, http.MethodGet, "/cart", tokenFor(t, "user-42", "user"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", f.cart.userID)
}

func TestRouter_StaticCartRoutesWinOverItemID(t *testing.T) {
	f := newRouterFixture()
	token := tokenFor(t, "user-1", "user")

	rec := f.do(t, http.MethodDelete, "/cart/clear", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/cart/coupon", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.cart.itemID.IsZero())

	itemID := primitive.NewObjectID()
	rec = f.do(t, http.MethodDelete, "/cart/"+itemID.Hex(), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, itemID, f.cart.itemID)
}

func TestRouter_AdminOnlyRoutes(t *testing.T) {
	f := newRouterFixture()
	user := tokenFor(t, "user-1", "user")
	admin := tokenFor(t, "admin-1", roleAdmin)
	orderID := primitive.NewObjectID().Hex()

	rec := f.do(t, http.MethodGet, "/coupons", user, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeError(t, rec).Code)

	rec = f.do(t, http.MethodGet, "/coupons", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPut, "/orders/"+orderID+"/pay", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.orders.calls)

	rec = f.do(t, http.MethodPut, "/orders/"+orderID+"/deliver", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"deliver"}, f.orders.calls)

	rec = f.do(t, http.MethodPut, "/orders/"+orderID+"/cancel", user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", f.orders.actor.UserID)
}

func TestRouter_PublicRoutes(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(t, http.MethodGet, "/stripe/online/success", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/stripe/webhook", "", `{"type":"ping"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"type":"ping"}`, string(f.checkout.payload))

	rec = f.do(t, http.MethodGet, "/stripe/checkout-session/"+primitive.NewObjectID().Hex(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
