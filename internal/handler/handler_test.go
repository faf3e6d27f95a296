package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-shop/storefront-api/internal/domain/auth"
	"github.com/velora-shop/storefront-api/internal/domain/coupon"
	"github.com/velora-shop/storefront-api/internal/domain/order"
	"github.com/velora-shop/storefront-api/internal/domain/payment"
	"github.com/velora-shop/storefront-api/internal/domain/product"
	"github.com/velora-shop/storefront-api/internal/domain/report"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID     map[int64]*product.Product
	setStock map[int64]int
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, &product.NotFoundError{ID: id}
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Count(_ context.Context) (int, error) { return len(m.byID), nil }

func (m *mockProductRepo) CountLowStock(_ context.Context, _ int) (int, error) { return 0, nil }

func (m *mockProductRepo) SetStock(_ context.Context, id int64, stock int) error {
	if _, ok := m.byID[id]; !ok {
		return &product.NotFoundError{ID: id}
	}
	if m.setStock == nil {
		m.setStock = make(map[int64]int)
	}
	m.setStock[id] = stock
	return nil
}

type mockUserResolver struct{}

func (mockUserResolver) ResolveByEmail(_ context.Context, _ string) (int64, error) { return 0, nil }

type mockOrderRepo struct {
	byID      map[int64]*order.Order
	nextID    int64
	paid      map[int64]string
	createErr error
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	o.ID = m.nextID
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID int64) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) List(_ context.Context, status order.Status) ([]order.Order, int, error) {
	var out []order.Order
	for _, o := range m.byID {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id int64, status order.Status) error {
	o, ok := m.byID[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, id int64, paymentRef string) error {
	if _, ok := m.byID[id]; !ok {
		return order.ErrNotFound
	}
	if m.paid == nil {
		m.paid = make(map[int64]string)
	}
	m.paid[id] = paymentRef
	return nil
}

type mockValidator struct {
	discount *coupon.Discount
	err      error
}

func (m *mockValidator) Validate(_ context.Context, _ string, _ decimal.Decimal) (*coupon.Discount, error) {
	return m.discount, m.err
}

type mockReportRepo struct{}

func (mockReportRepo) PaidRevenueSince(_ context.Context, _ time.Time) (decimal.Decimal, error) {
	return decimal.RequireFromString("100.00"), nil
}

func (mockReportRepo) OrderCount(_ context.Context) (int, error) { return 4, nil }

func (mockReportRepo) OrderCountSince(_ context.Context, _ time.Time) (int, error) { return 1, nil }

func (mockReportRepo) CustomerCount(_ context.Context) (int, error) { return 2, nil }

func (mockReportRepo) RecentOrders(_ context.Context, _ int) ([]order.Order, error) { return nil, nil }

func (mockReportRepo) PaidOrders(_ context.Context, _, _ time.Time) ([]report.PaidOrder, error) {
	return nil, nil
}

type mockGateway struct {
	order *payment.GatewayOrder
	err   error
}

func (m *mockGateway) CreateOrder(_ context.Context, _ decimal.Decimal, _, _ string) (*payment.GatewayOrder, error) {
	return m.order, m.err
}

type mockTransactionRepo struct {
	created []*payment.Transaction
}

func (m *mockTransactionRepo) Create(_ context.Context, t *payment.Transaction) error {
	m.created = append(m.created, t)
	return nil
}

// --- Test harness ---

type fixture struct {
	router       http.Handler
	token        string
	products     *mockProductRepo
	orders       *mockOrderRepo
	validator    *mockValidator
	gateway      *mockGateway
	transactions *mockTransactionRepo
	verifier     *payment.Verifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := &mockProductRepo{byID: map[int64]*product.Product{
		1: {ID: 1, Name: "widget", Slug: "widget", Price: decimal.RequireFromString("10.00"), Stock: 50},
	}}
	orders := &mockOrderRepo{byID: map[int64]*order.Order{
		5: {ID: 5, OrderNumber: "ORD-5", UserID: 7, Status: order.StatusPending, PaymentStatus: order.PaymentPending},
	}, nextID: 100}
	validator := &mockValidator{
		discount: &coupon.Discount{CouponID: 3, Code: "TEN", Amount: decimal.RequireFromString("10.00")},
	}
	gw := &mockGateway{
		order: &payment.GatewayOrder{ID: "order_gw1", Amount: 10000, Currency: "INR", Status: "created"},
	}
	transactions := &mockTransactionRepo{}
	verifier := payment.NewVerifier([]byte("testsecret"))

	tokens := auth.NewTokens([]byte("secret"))
	token, err := tokens.Issue(auth.Identity{UserID: 7, Email: "asha@example.com", Role: "admin"})
	require.NoError(t, err)

	h := NewHandler(
		order.NewService(products, mockUserResolver{}, orders),
		products,
		validator,
		report.NewService(mockReportRepo{}, products),
		verifier,
		gw,
		transactions,
		tokens,
	)

	return &fixture{
		router:       h.Router(),
		token:        token,
		products:     products,
		orders:       orders,
		validator:    validator,
		gateway:      gw,
		transactions: transactions,
		verifier:     verifier,
	}
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   *int            `json:"total"`
}

func (f *fixture) do(t *testing.T, method, path string, body any, authed bool) (int, response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func validOrderBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{"product_id": 1, "quantity": 2, "price": "10.00", "total": "20.00"},
		},
		"shipping_address": map[string]any{"name": "Asha Rao", "line1": "12 Hill Road", "city": "Pune"},
		"payment_method":   "online",
		"transaction_id":   "pay_123",
		"subtotal":         "20.00",
		"total_amount":     "20.00",
	}
}

// --- Auth middleware ---

func TestAuth_MissingToken(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodGet, "/api/orders", nil, false)

	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "No token provided", resp.Message)
}

func TestAuth_MalformedHeader(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Malformed token")
}

func TestAuth_InvalidToken(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestAuth_WrongSecretToken(t *testing.T) {
	f := newFixture(t)

	forged, err := auth.NewTokens([]byte("other")).Issue(auth.Identity{UserID: 1})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- Orders ---

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPost, "/api/orders", validOrderBody(), true)

	require.Equal(t, http.StatusCreated, code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Order placed successfully", resp.Message)

	var o order.Order
	require.NoError(t, json.Unmarshal(resp.Data, &o))
	assert.NotEmpty(t, o.OrderNumber)
	assert.Equal(t, int64(7), o.UserID)
	assert.Equal(t, order.PaymentPaid, o.PaymentStatus)
	assert.Equal(t, order.StatusConfirmed, o.Status)
}

func TestPlaceOrder_EmptyItems(t *testing.T) {
	f := newFixture(t)

	body := validOrderBody()
	body["items"] = []map[string]any{}
	code, resp := f.do(t, http.MethodPost, "/api/orders", body, true)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "No items in order", resp.Message)
}

func TestPlaceOrder_DuplicateOrderNumber(t *testing.T) {
	f := newFixture(t)
	f.orders.createErr = fmt.Errorf("creating order: %w", order.ErrDuplicateNumber)

	code, resp := f.do(t, http.MethodPost, "/api/orders", validOrderBody(), true)

	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Duplicate order number", resp.Message)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newFixture(t)

	body := validOrderBody()
	body["items"] = []map[string]any{{"product_id": 99, "quantity": 1}}
	code, resp := f.do(t, http.MethodPost, "/api/orders", body, true)

	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, resp.Success)
}

func TestPlaceOrder_MissingPaymentMethod(t *testing.T) {
	f := newFixture(t)

	body := validOrderBody()
	delete(body, "payment_method")
	code, resp := f.do(t, http.MethodPost, "/api/orders", body, true)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", resp.Message)
}

func TestGetOrder(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodGet, "/api/orders/5", nil, true)

	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)

	var o order.Order
	require.NoError(t, json.Unmarshal(resp.Data, &o))
	assert.Equal(t, int64(5), o.ID)
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodGet, "/api/orders/404", nil, true)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Order not found", resp.Message)
}

func TestGetOrder_BadID(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodGet, "/api/orders/abc", nil, true)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodGet, "/api/orders", nil, true)

	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Total)
	assert.Equal(t, 1, *resp.Total)
}

func TestListOrders_UnknownStatusFilter(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodGet, "/api/orders?status=bogus", nil, true)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Unknown order status", resp.Message)
}

func TestListUserOrders(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodGet, "/api/users/7/orders", nil, true)

	require.Equal(t, http.StatusOK, code)
	var orders []order.Order
	require.NoError(t, json.Unmarshal(resp.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, int64(7), orders[0].UserID)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPut, "/api/orders/5/status",
		map[string]any{"order_status": "confirmed"}, true)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Order status updated successfully", resp.Message)
	assert.Equal(t, order.StatusConfirmed, f.orders.byID[5].Status)
}

func TestUpdateOrderStatus_IllegalTransition(t *testing.T) {
	f := newFixture(t)
	f.orders.byID[5].Status = order.StatusDelivered

	code, resp := f.do(t, http.MethodPut, "/api/orders/5/status",
		map[string]any{"order_status": "cancelled"}, true)

	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, resp.Success)
}

// --- Stock ---

func TestUpdateProductStock(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPatch, "/api/products/1/stock",
		map[string]any{"quantity": 5, "action": "subtract"}, true)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Product stock updated successfully", resp.Message)
	assert.Equal(t, 45, f.products.setStock[1])
}

func TestUpdateProductStock_DefaultActionIsSet(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPatch, "/api/products/1/stock",
		map[string]any{"quantity": 12}, true)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 12, f.products.setStock[1])
}

func TestUpdateProductStock_UnknownAction(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPatch, "/api/products/1/stock",
		map[string]any{"quantity": 5, "action": "teleport"}, true)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid request body", resp.Message)
}

func TestUpdateProductStock_NotFound(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPatch, "/api/products/99/stock",
		map[string]any{"quantity": 5}, true)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Product not found", resp.Message)
}

// --- Coupons ---

func TestValidateCoupon(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPost, "/api/coupons/validate",
		map[string]any{"code": "TEN", "subtotal": "100.00"}, true)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Coupon is valid", resp.Message)

	var data struct {
		CouponID       int64           `json:"coupon_id"`
		Code           string          `json:"code"`
		DiscountAmount decimal.Decimal `json:"discount_amount"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, int64(3), data.CouponID)
	assert.True(t, decimal.RequireFromString("10.00").Equal(data.DiscountAmount))
}

func TestValidateCoupon_Invalid(t *testing.T) {
	f := newFixture(t)
	f.validator.discount = nil
	f.validator.err = coupon.ErrInvalidCoupon

	code, resp := f.do(t, http.MethodPost, "/api/coupons/validate",
		map[string]any{"code": "NOPE"}, true)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid coupon code", resp.Message)
}

func TestValidateCoupon_MinOrderNotMet(t *testing.T) {
	f := newFixture(t)
	f.validator.discount = nil
	f.validator.err = coupon.ErrMinOrderNotMet

	code, resp := f.do(t, http.MethodPost, "/api/coupons/validate",
		map[string]any{"code": "BIG", "subtotal": "10.00"}, true)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Minimum order amount not met", resp.Message)
}

// --- Dashboard ---

func TestDashboardStats(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodGet, "/api/dashboard/stats", nil, true)

	require.Equal(t, http.StatusOK, code)

	var d report.Dashboard
	require.NoError(t, json.Unmarshal(resp.Data, &d))
	assert.Equal(t, 4, d.Stats.TotalOrders)
	assert.Equal(t, 1, d.Stats.TotalProducts)
	assert.Len(t, d.SalesChart, 7)
}

// --- Payments (public routes) ---

func TestCreateGatewayOrder(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPost, "/api/payment/create-order",
		map[string]any{"amount": "100.00", "currency": "INR", "receipt": "rcpt_1"}, false)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Gateway order created", resp.Message)

	var gw payment.GatewayOrder
	require.NoError(t, json.Unmarshal(resp.Data, &gw))
	assert.Equal(t, "order_gw1", gw.ID)

	require.Len(t, f.transactions.created, 1)
	assert.Equal(t, "order_gw1", f.transactions.created[0].GatewayOrderID)
}

func TestCreateGatewayOrder_NonPositiveAmount(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPost, "/api/payment/create-order",
		map[string]any{"amount": "0"}, false)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Amount must be greater than 0", resp.Message)
}

func TestVerifyPayment(t *testing.T) {
	f := newFixture(t)

	sig := f.verifier.Signature("order_gw1", "pay_1")
	code, resp := f.do(t, http.MethodPost, "/api/payment/verify-payment", map[string]any{
		"razorpay_order_id":   "order_gw1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  sig,
	}, false)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Payment verified successfully", resp.Message)
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	f := newFixture(t)

	code, resp := f.do(t, http.MethodPost, "/api/payment/verify-payment", map[string]any{
		"razorpay_order_id":   "order_gw1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "deadbeef",
	}, false)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid signature sent!", resp.Message)
}

func TestVerifyPayment_ReconcilesOrder(t *testing.T) {
	f := newFixture(t)

	sig := f.verifier.Signature("order_gw1", "pay_1")
	code, _ := f.do(t, http.MethodPost, "/api/payment/verify-payment", map[string]any{
		"razorpay_order_id":   "order_gw1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  sig,
		"order_id":            5,
	}, false)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pay_1", f.orders.paid[5])
}

func TestVerifyPayment_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	sig := f.verifier.Signature("order_gw1", "pay_1")
	code, resp := f.do(t, http.MethodPost, "/api/payment/verify-payment", map[string]any{
		"razorpay_order_id":   "order_gw1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  sig,
		"order_id":            404,
	}, false)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Order not found", resp.Message)
}
