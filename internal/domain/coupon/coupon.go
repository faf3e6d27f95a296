package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the order subtotal,
	// optionally capped by MaxDiscount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
)

var (
	// ErrInvalidCoupon is returned when a coupon code is unknown or inactive.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrCouponExpired is returned when a coupon is outside its valid time window.
	ErrCouponExpired = errors.New("coupon expired")
	// ErrUsageLimitReached is returned when a coupon has exhausted its allowed uses.
	ErrUsageLimitReached = errors.New("coupon usage limit reached")
	// ErrMinOrderNotMet is returned when the order subtotal is below the
	// coupon's minimum order amount.
	ErrMinOrderNotMet = errors.New("minimum order amount not met")
)

// Rule defines a coupon's discount behaviour and eligibility constraints.
// MaxDiscount and UsageLimit are optional; nil means unconstrained.
type Rule struct {
	ID             int64
	Code           string
	DiscountType   DiscountType
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxDiscount    *decimal.Decimal
	UsageLimit     *int
	UsedCount      int
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	Active         bool
}

// Discount is a computed discount quote.
type Discount struct {
	CouponID int64
	Code     string
	Amount   decimal.Decimal
}

// Repository provides lookup of coupon rules.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
}
