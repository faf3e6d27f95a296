package payment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// GatewayOrder is an order registered with the payment gateway. Amounts are
// in minor currency units (paise for INR), mirroring the gateway wire format.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Gateway creates orders with a third-party payment processor.
type Gateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*GatewayOrder, error)
}

// Transaction is a best-effort audit record of a gateway interaction. It is
// written when a gateway order is created and never read back into the order
// lifecycle.
type Transaction struct {
	ID              int64           `json:"id"`
	OrderID         *int64          `json:"order_id,omitempty"`
	Gateway         string          `json:"gateway"`
	GatewayOrderID  string          `json:"gateway_order_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	GatewayResponse json.RawMessage `json:"gateway_response,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionRepository persists gateway audit records.
type TransactionRepository interface {
	Create(ctx context.Context, t *Transaction) error
}
