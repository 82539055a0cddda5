package coupon

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Apply calculates the discount of rule against subtotal. It returns
// ErrMinOrderNotMet when the subtotal is below the rule's minimum order
// amount. The discount never exceeds the subtotal nor a positive MaxDiscount.
func Apply(rule *Rule, subtotal decimal.Decimal) (Discount, error) {
	if rule.MinOrderAmount.IsPositive() && subtotal.LessThan(rule.MinOrderAmount) {
		return Discount{}, errors.Wrapf(ErrMinOrderNotMet, "%s requires %s", rule.Code, rule.MinOrderAmount)
	}

	var amount decimal.Decimal
	switch rule.DiscountType {
	case DiscountPercent:
		amount = subtotal.Mul(rule.Value).Div(hundred).Round(0)
	case DiscountFixed:
		amount = decimal.Min(rule.Value, subtotal)
	default:
		return Discount{}, errors.Errorf("unsupported discount type: %q", rule.DiscountType)
	}

	if rule.MaxDiscount.IsPositive() {
		amount = decimal.Min(amount, rule.MaxDiscount)
	}

	return Discount{
		Amount:      floorAtZero(amount),
		Description: rule.Description,
	}, nil
}

// floorAtZero clamps negative values to zero.
func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
