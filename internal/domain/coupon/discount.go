package coupon

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Apply calculates the discount for the given rule against an order
// subtotal. It assumes eligibility (window, usage, minimum) has already been
// checked.
func Apply(rule *Rule, subtotal decimal.Decimal) (Discount, error) {
	var amount decimal.Decimal

	switch rule.DiscountType {
	case DiscountPercentage:
		amount = subtotal.Mul(rule.Value).Div(hundred)
		if rule.MaxDiscount != nil && amount.GreaterThan(*rule.MaxDiscount) {
			amount = *rule.MaxDiscount
		}
	case DiscountFixed:
		amount = decimal.Min(rule.Value, subtotal)
	default:
		return Discount{}, errors.Errorf("unsupported discount type: %q", rule.DiscountType)
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return Discount{
		CouponID: rule.ID,
		Code:     rule.Code,
		Amount:   amount.Round(2),
	}, nil
}
