package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator resolves a coupon code against a cart subtotal and returns the
// matching rule with its computed discount.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Rule, *Discount, error)
}

var _ Validator = (*RepoValidator)(nil)

// RepoValidator implements Validator by looking up coupon rules from a
// Repository and applying them via the Apply function.
type RepoValidator struct {
	repo Repository
	now  func() time.Time
}

// NewRepoValidator creates a RepoValidator backed by the given Repository.
func NewRepoValidator(repo Repository) *RepoValidator {
	return &RepoValidator{repo: repo, now: time.Now}
}

// Validate normalizes the code, looks up its rule, checks the validity window
// and applies it to the subtotal.
func (v *RepoValidator) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*Rule, *Discount, error) {
	code = Normalize(code)
	if code == "" {
		return nil, nil, ErrInvalidCoupon
	}

	rule, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCoupon) {
			return nil, nil, ErrInvalidCoupon
		}
		return nil, nil, errors.Wrap(err, "lookup coupon")
	}

	if err := CheckWindow(rule, v.now()); err != nil {
		return nil, nil, err
	}

	d, err := Apply(rule, subtotal)
	if err != nil {
		return nil, nil, err
	}

	return rule, &d, nil
}

// CheckWindow returns ErrCouponExpired when now is outside the rule's
// validity window. Open bounds are unrestricted.
func CheckWindow(rule *Rule, now time.Time) error {
	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return ErrCouponExpired
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return ErrCouponExpired
	}
	return nil
}
