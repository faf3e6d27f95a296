package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle of money movement for an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Status is the fulfillment lifecycle of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Payment methods accepted at checkout.
const (
	MethodOnline         = "online"
	MethodCashOnDelivery = "cash_on_delivery"
)

// Address is a structured address snapshot stored on the order. All fields
// are optional at the schema level; which fields are required is decided at
// the request boundary.
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Order is the header record representing one checkout transaction.
type Order struct {
	ID               int64           `json:"id"`
	OrderNumber      string          `json:"order_number"`
	UserID           int64           `json:"user_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	ShippingAmount   decimal.Decimal `json:"shipping_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	FinalAmount      decimal.Decimal `json:"final_amount"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	Status           Status          `json:"order_status"`
	PaymentMethod    string          `json:"payment_method"`
	GatewayOrderID   string          `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	ShippingAddress  Address         `json:"shipping_address"`
	BillingAddress   Address         `json:"billing_address"`
	CouponID         *int64          `json:"coupon_id,omitempty"`
	CouponCode       string          `json:"coupon_code,omitempty"`
	TrackingNumber   string          `json:"tracking_number,omitempty"`
	ShippingMethod   string          `json:"shipping_method,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Items            []Item          `json:"items,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Item is one line of an order. Price and TotalPrice are snapshots captured
// at order time, decoupled from the live product price.
type Item struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	ProductID  int64           `json:"product_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Repository defines persistence operations for orders. Create must persist
// the header and all line items atomically: either everything is written or
// nothing is.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	List(ctx context.Context, status Status) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	MarkPaid(ctx context.Context, id int64, paymentRef string) error
}
