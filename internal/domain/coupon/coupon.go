package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountPercent takes a percentage off the subtotal, rounded to whole
	// currency units.
	DiscountPercent DiscountType = "percent"
	// DiscountFixed takes a fixed amount off, capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
)

var (
	// ErrInvalidCoupon is returned when a coupon code is not known.
	ErrInvalidCoupon = errors.New("invalid coupon code")
	// ErrCouponExpired is returned when a coupon is outside its valid time window.
	ErrCouponExpired = errors.New("coupon expired")
	// ErrMinOrderNotMet is returned when the subtotal is below the coupon's
	// minimum order amount.
	ErrMinOrderNotMet = errors.New("minimum order amount not met")
)

// Rule defines a coupon's discount behaviour and eligibility constraints.
type Rule struct {
	Code           string
	DiscountType   DiscountType
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxDiscount    decimal.Decimal
	Description    string
	ValidFrom      *time.Time
	ValidUntil     *time.Time
}

// Discount holds the computed discount amount and a human-readable description.
type Discount struct {
	Amount      decimal.Decimal
	Description string
}

// Repository provides lookup of coupon rules by their code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
}

// Normalize canonicalizes user input into a coupon code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
