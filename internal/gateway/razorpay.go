// Package gateway adapts third-party payment processors to the payment
// domain interfaces.
package gateway

import (
	"context"

	"github.com/go-faster/errors"
	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"github.com/velora-shop/storefront-api/internal/domain/payment"
)

// Name identifies the Razorpay gateway in transaction audit records.
const Name = "razorpay"

// DefaultCurrency is used when the caller does not request one.
const DefaultCurrency = "INR"

var _ payment.Gateway = (*Razorpay)(nil)

// Razorpay implements payment.Gateway over the Razorpay orders API.
type Razorpay struct {
	client *razorpay.Client
}

// NewRazorpay creates a Razorpay gateway with the given key pair.
func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder registers an order with Razorpay. The major-unit amount is
// converted to minor units (paise). The SDK does not take a context; the
// ctx parameter only gates the call upfront.
func (g *Razorpay) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*payment.GatewayOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	minor := amount.Shift(2).Round(0).IntPart()
	data := map[string]interface{}{
		"amount":   minor,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "razorpay create order")
	}

	o := &payment.GatewayOrder{
		Amount:   minor,
		Currency: currency,
		Receipt:  receipt,
	}
	if id, ok := body["id"].(string); ok {
		o.ID = id
	}
	if status, ok := body["status"].(string); ok {
		o.Status = status
	}
	if o.ID == "" {
		return nil, errors.New("razorpay create order: response missing id")
	}
	return o, nil
}
