package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator validates a coupon code against an order subtotal and returns
// the computed discount quote.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error)
}

// RepoValidator implements Validator by looking up coupon rules from a
// Repository and applying them via Apply.
//
// Validation is a read-only quote: the usage counter is not incremented.
// Placing an order does not consume a coupon either, so used_count only
// moves through admin tooling.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate looks up the coupon rule for the given code, checks the active
// flag, temporal validity, usage limit, and minimum order amount, then
// computes the discount.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Discount, error) {
	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return nil, ErrInvalidCoupon
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}

	if !rule.Active {
		return nil, ErrInvalidCoupon
	}

	now := v.now()
	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return nil, ErrCouponExpired
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return nil, ErrCouponExpired
	}

	if rule.UsageLimit != nil && rule.UsedCount >= *rule.UsageLimit {
		return nil, ErrUsageLimitReached
	}

	if subtotal.LessThan(rule.MinOrderAmount) {
		return nil, ErrMinOrderNotMet
	}

	d, err := Apply(rule, subtotal)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
