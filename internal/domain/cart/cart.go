// Package cart implements the shopping cart aggregate and its pricing.
package cart

import (
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/kmedi-tour/internal/catalog"
	"github.com/xenking/kmedi-tour/internal/domain/coupon"
)

// ErrLineNotFound is returned when a line identifier is not in the cart.
var ErrLineNotFound = errors.New("cart line not found")

// LineItem is one cart entry. Prices are captured when the package is first
// added and do not follow later catalog changes.
type LineItem struct {
	ID            string          `json:"id"`
	PackageID     string          `json:"packageId"`
	Slug          string          `json:"slug"`
	Title         string          `json:"title"`
	Image         string          `json:"image"`
	UnitPrice     decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Quantity      int             `json:"quantity"`
	AddedAt       time.Time       `json:"addedAt"`
}

// Subtotal returns unit price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AppliedCoupon is the coupon rule stored on the cart.
type AppliedCoupon struct {
	Code           string              `json:"code"`
	DiscountType   coupon.DiscountType `json:"type"`
	Value          decimal.Decimal     `json:"value"`
	MinOrderAmount decimal.Decimal     `json:"minOrderAmount"`
	MaxDiscount    decimal.Decimal     `json:"maxDiscount"`
	Description    string              `json:"description"`
}

// Rule converts the applied coupon back into a pricing rule.
func (a AppliedCoupon) Rule() *coupon.Rule {
	return &coupon.Rule{
		Code:           a.Code,
		DiscountType:   a.DiscountType,
		Value:          a.Value,
		MinOrderAmount: a.MinOrderAmount,
		MaxDiscount:    a.MaxDiscount,
		Description:    a.Description,
	}
}

// Cart holds line items and at most one applied coupon. The zero value is
// an empty cart.
type Cart struct {
	Items  []LineItem     `json:"items"`
	Coupon *AppliedCoupon `json:"coupon,omitempty"`
}

// AddItem adds one unit of pkg. A package already in the cart has its
// quantity incremented instead of gaining a second line.
func (c *Cart) AddItem(pkg catalog.Package, now time.Time) LineItem {
	if i := c.indexOfPackage(pkg.ID); i >= 0 {
		c.Items[i].Quantity++
		return c.Items[i]
	}
	line := LineItem{
		ID:            uuid.NewString(),
		PackageID:     pkg.ID,
		Slug:          pkg.Slug,
		Title:         pkg.Title,
		Image:         pkg.Image(),
		UnitPrice:     pkg.Price(),
		OriginalPrice: pkg.Pricing.OriginalPrice,
		Quantity:      1,
		AddedAt:       now,
	}
	c.Items = append(c.Items, line)
	return line
}

// RemoveItem deletes the line with the given line identifier. Removing an
// unknown line is a no-op.
func (c *Cart) RemoveItem(lineID string) {
	c.Items = slices.DeleteFunc(c.Items, func(l LineItem) bool { return l.ID == lineID })
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line. There is no upper bound.
func (c *Cart) UpdateQuantity(lineID string, qty int) error {
	i := slices.IndexFunc(c.Items, func(l LineItem) bool { return l.ID == lineID })
	if i < 0 {
		return errors.Wrapf(ErrLineNotFound, "line %q", lineID)
	}
	if qty <= 0 {
		c.Items = slices.Delete(c.Items, i, i+1)
		return nil
	}
	c.Items[i].Quantity = qty
	return nil
}

// Clear empties the line items. The applied coupon is kept.
func (c *Cart) Clear() {
	c.Items = nil
}

// Total returns the sum of line subtotals before any discount.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.Items {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// ItemCount returns the sum of quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

// ApplyCoupon stores rule as the cart's coupon, replacing any previous one.
func (c *Cart) ApplyCoupon(rule *coupon.Rule) {
	c.Coupon = &AppliedCoupon{
		Code:           rule.Code,
		DiscountType:   rule.DiscountType,
		Value:          rule.Value,
		MinOrderAmount: rule.MinOrderAmount,
		MaxDiscount:    rule.MaxDiscount,
		Description:    rule.Description,
	}
}

// RemoveCoupon drops the applied coupon.
func (c *Cart) RemoveCoupon() {
	c.Coupon = nil
}

// Totals is the derived pricing view of a cart.
type Totals struct {
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
	// CouponActive is false when a coupon is applied but the current
	// subtotal no longer qualifies for it.
	CouponActive bool
}

// Totals derives subtotal, discount and total from the current items and
// coupon. The total is never negative.
func (c *Cart) Totals() Totals {
	t := Totals{
		Subtotal:  c.Total(),
		Discount:  decimal.Zero,
		ItemCount: c.ItemCount(),
	}
	if c.Coupon != nil {
		if d, err := coupon.Apply(c.Coupon.Rule(), t.Subtotal); err == nil {
			t.Discount = d.Amount
			t.CouponActive = true
		}
	}
	t.Total = t.Subtotal.Sub(t.Discount)
	if t.Total.IsNegative() {
		t.Total = decimal.Zero
	}
	return t
}

func (c *Cart) indexOfPackage(packageID string) int {
	return slices.IndexFunc(c.Items, func(l LineItem) bool { return l.PackageID == packageID })
}
