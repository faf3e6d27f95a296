package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-api/internal/domain/product"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems      = fmt.Errorf("no items in order")
	ErrNotFound        = fmt.Errorf("order not found")
	ErrDuplicateNumber = fmt.Errorf("duplicate order number")
)

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// UserResolver resolves a purchaser by email for guest checkouts.
// ResolveByEmail returns 0 when no account matches.
type UserResolver interface {
	ResolveByEmail(ctx context.Context, email string) (int64, error)
}

// ItemInput is one requested line item. Price and Total are the figures
// quoted to the customer; they are snapshotted onto the order as-is.
type ItemInput struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal
	Total     decimal.Decimal
}

// PlaceOrderRequest holds the input for placing an order. UserID comes from
// the authenticated session; when it is zero, CustomerEmail is used to
// resolve the purchaser, falling back to a guest order.
type PlaceOrderRequest struct {
	UserID          int64
	CustomerEmail   string
	Items           []ItemInput
	ShippingAddress Address
	BillingAddress  *Address
	PaymentMethod   string
	TransactionID   string
	Subtotal        decimal.Decimal
	DeliveryFee     decimal.Decimal
	TaxAmount       decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	CouponID        *int64
	CouponCode      string
	Notes           string
}

// Service encapsulates the order workflow: purchaser resolution, item
// validation, status derivation, and atomic persistence of the header with
// its line items.
type Service struct {
	products product.Repository
	users    UserResolver
	orders   Repository

	now     func() time.Time
	randInt func(n int) int
}

// NewService creates an order Service with the required domain dependencies.
func NewService(products product.Repository, users UserResolver, orders Repository) *Service {
	return &Service{
		products: products,
		users:    users,
		orders:   orders,
		now:      time.Now,
		randInt:  rand.IntN,
	}
}

// PlaceOrder validates the line items, resolves the purchaser, derives the
// initial payment and order statuses from the payment method, and persists
// the order header together with all line items in one transaction.
//
// Stock is not decremented and coupon usage counters are not incremented
// here; stock moves through the dedicated adjustment operation.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	// Validate quantities and collect product IDs for a single batch fetch.
	ids := make([]int64, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	known := make(map[int64]struct{}, len(fetched))
	for _, p := range fetched {
		known[p.ID] = struct{}{}
	}
	for _, item := range req.Items {
		if _, ok := known[item.ProductID]; !ok {
			return nil, &product.NotFoundError{ID: item.ProductID}
		}
	}

	userID := req.UserID
	if userID == 0 && req.CustomerEmail != "" {
		userID, err = s.users.ResolveByEmail(ctx, req.CustomerEmail)
		if err != nil {
			return nil, fmt.Errorf("resolve purchaser: %w", err)
		}
	}

	paymentStatus, status := deriveStatuses(req.PaymentMethod, req.TransactionID)

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	o := &Order{
		OrderNumber:      s.orderNumber(),
		UserID:           userID,
		TotalAmount:      req.Subtotal,
		DiscountAmount:   req.DiscountAmount,
		ShippingAmount:   req.DeliveryFee,
		TaxAmount:        req.TaxAmount,
		FinalAmount:      req.TotalAmount,
		PaymentStatus:    paymentStatus,
		Status:           status,
		PaymentMethod:    req.PaymentMethod,
		GatewayPaymentID: req.TransactionID,
		ShippingAddress:  req.ShippingAddress,
		BillingAddress:   billing,
		CouponID:         req.CouponID,
		CouponCode:       req.CouponCode,
		Notes:            req.Notes,
	}

	items := make([]Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = Item{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			Price:      item.Price,
			TotalPrice: item.Total,
		}
	}
	o.Items = items

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return o, nil
}

// deriveStatuses implements the initial status policy: a paid online order
// is confirmed immediately, cash on delivery is auto-confirmed with payment
// still pending, and everything else starts out fully pending.
func deriveStatuses(method, transactionID string) (PaymentStatus, Status) {
	switch {
	case method == MethodOnline && transactionID != "":
		return PaymentPaid, StatusConfirmed
	case method == MethodCashOnDelivery:
		return PaymentPending, StatusConfirmed
	default:
		return PaymentPending, StatusPending
	}
}

// orderNumber builds a human-readable token from the current time plus a
// random suffix. The orders table carries a unique constraint as the real
// uniqueness guarantee.
func (s *Service) orderNumber() string {
	return fmt.Sprintf("ORD-%d%03d", s.now().UnixMilli(), s.randInt(1000))
}

// GetOrder returns an order with its line items.
func (s *Service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListByUser returns a user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// List returns all orders newest first, optionally filtered by status, along
// with the total count.
func (s *Service) List(ctx context.Context, status Status) ([]Order, int, error) {
	if status != "" && !ValidStatus(status) {
		return nil, 0, fmt.Errorf("unknown order status %q", status)
	}
	return s.orders.List(ctx, status)
}

// UpdateStatus moves an order to the given status, rejecting transitions the
// lifecycle does not allow. Updating to the current status is a no-op that
// succeeds.
func (s *Service) UpdateStatus(ctx context.Context, id int64, to Status) (*Order, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("unknown order status %q", to)
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(o.Status, to) {
		return nil, &InvalidTransitionError{From: o.Status, To: to}
	}

	if o.Status != to {
		if err := s.orders.UpdateStatus(ctx, id, to); err != nil {
			return nil, fmt.Errorf("update order status: %w", err)
		}
		o.Status = to
	}
	return o, nil
}

// MarkPaid records a successful payment against an order: payment status
// becomes paid and a pending order is confirmed.
func (s *Service) MarkPaid(ctx context.Context, id int64, paymentRef string) error {
	if err := s.orders.MarkPaid(ctx, id, paymentRef); err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	return nil
}
