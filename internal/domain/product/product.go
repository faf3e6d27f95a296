package product

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NotFoundError indicates a requested product does not exist.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ID)
}

// Product is a catalog item. The JSON-typed columns (images, tags,
// specifications, dimensions) are carried as raw messages; their structure
// is owned by the admin tooling, not by this service.
type Product struct {
	ID             int64           `json:"id"`
	CategoryID     *int64          `json:"category_id,omitempty"`
	BrandID        *int64          `json:"brand_id,omitempty"`
	Name           string          `json:"name"`
	Slug           string          `json:"slug"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	SKU            string          `json:"sku,omitempty"`
	Images         json.RawMessage `json:"images,omitempty"`
	Tags           json.RawMessage `json:"tags,omitempty"`
	Specifications json.RawMessage `json:"specifications,omitempty"`
	Dimensions     json.RawMessage `json:"dimensions,omitempty"`
	Status         bool            `json:"status"`
	IsPublished    bool            `json:"is_published"`
	CreatedAt      time.Time       `json:"created_at"`
}

// StockAction selects how a stock adjustment is applied.
type StockAction string

const (
	StockSet      StockAction = "set"
	StockAdd      StockAction = "add"
	StockSubtract StockAction = "subtract"
)

// ApplyStock returns the new stock level after applying the action.
// Subtraction is floored at zero; unknown actions behave like set.
func ApplyStock(current, quantity int, action StockAction) int {
	switch action {
	case StockAdd:
		return current + quantity
	case StockSubtract:
		if quantity > current {
			return 0
		}
		return current - quantity
	default:
		return quantity
	}
}

// Repository defines catalog persistence operations used by the order
// workflow and admin reporting.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	Count(ctx context.Context) (int, error)
	CountLowStock(ctx context.Context, threshold int) (int, error)
	SetStock(ctx context.Context, id int64, stock int) error
}
