package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/infra/token"
	mock_token "github.com/RoyceAzure/lab/storefront/internal/infra/token/mock"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

type stubCartService struct {
	service.ICartService
	owner service.CartOwner
}

func (s *stubCartService) GetCart(_ context.Context, owner service.CartOwner) (*model.Cart, error) {
	s.owner = owner
	return &model.Cart{ID: 1}, nil
}

type stubPaymentService struct {
	service.IPaymentService
	pidx            string
	transactionUUID string
}

func (s *stubPaymentService) KhaltiCallback(_ context.Context, pidx string) (string, error) {
	s.pidx = pidx
	return "http://shop.test/payment/success", nil
}

func (s *stubPaymentService) EsewaVerify(_ context.Context, transactionUUID, _ string) (string, error) {
	s.transactionUUID = transactionUUID
	return "http://shop.test/payment/success", nil
}

func (s *stubPaymentService) EsewaFailure(_ context.Context, _ map[string]string) string {
	return "http://shop.test/payment/failure"
}

func newTestRouter(t *testing.T, maker token.Maker, cart service.ICartService, payments service.IPaymentService) http.Handler {
	server := api.NewServer(
		handler.NewCatalogHandler(struct{ service.ICatalogService }{}),
		handler.NewCartHandler(cart),
		handler.NewAddressHandler(struct{ service.IAddressService }{}),
		handler.NewOrderHandler(struct{ service.IOrderService }{}, struct{ service.IPaymentService }{}),
		handler.NewAuthHandler(struct{ service.IAuthService }{}),
		handler.NewPaymentHandler(payments, "secret"),
		handler.NewHealthHandler(nil),
	)
	m := metrics.New("router_test")
	return SetupRouter(server, maker, nil, m, m.Handler(), nil)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	r := newTestRouter(t, mock_token.NewMockMaker(ctrl), &stubCartService{}, &stubPaymentService{})

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/addresses"},
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/orders/1"},
		{http.MethodPost, "/api/orders/1/mark-paid"},
		{http.MethodPost, "/api/payments/khalti/initiate/1"},
		{http.MethodPost, "/api/payments/esewa/initiate/1"},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}
}

func TestCartOwnerFromTokenAndSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	maker := mock_token.NewMockMaker(ctrl)
	maker.EXPECT().VertifyToken("access").Return(&token.Payload{UserID: 3, TokenType: token.AccessToken}, nil)

	cart := &stubCartService{}
	r := newTestRouter(t, maker, cart, &stubPaymentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(string(constants.SessionIDHeaderKey), "guest-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, service.CartOwner{SessionID: "guest-1"}, cart.owner)

	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer access")
	req.Header.Set(string(constants.SessionIDHeaderKey), "guest-1")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, service.CartOwner{UserID: 3, SessionID: "guest-1"}, cart.owner)
}

func TestOperationalEndpoints(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	r := newTestRouter(t, mock_token.NewMockMaker(ctrl), &stubCartService{}, &stubPaymentService{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(constants.RequestIDHeader))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "router_test_http_requests_total")
}

func TestGatewayReturnURLsWithTrailingSlash(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	payments := &stubPaymentService{}
	r := newTestRouter(t, mock_token.NewMockMaker(ctrl), &stubCartService{}, payments)

	for _, route := range []struct{ method, path, location string }{
		{http.MethodGet, "/api/payments/khalti/callback/?pidx=HT6o6PEZRWFJ5ygavzHWd5", "http://shop.test/payment/success"},
		{http.MethodGet, "/api/payments/esewa/success/?transaction_uuid=u1&total_amount=1500.00", "http://shop.test/payment/success"},
		{http.MethodPost, "/api/payments/esewa/failure/", "http://shop.test/payment/failure"},
		{http.MethodGet, "/api/payments/khalti/callback?pidx=HT6o6PEZRWFJ5ygavzHWd5", "http://shop.test/payment/success"},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		require.Equal(t, http.StatusFound, rec.Code, route.path)
		require.Equal(t, route.location, rec.Header().Get("Location"), route.path)
	}
	require.Equal(t, "HT6o6PEZRWFJ5ygavzHWd5", payments.pidx)
	require.Equal(t, "u1", payments.transactionUUID)

	// collections keep answering with and without the slash
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
