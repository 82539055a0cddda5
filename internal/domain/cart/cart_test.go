package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kmedi-tour/internal/catalog"
	"github.com/xenking/kmedi-tour/internal/domain/coupon"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestPackage(id string, original, sale int64) catalog.Package {
	return catalog.Package{
		ID:     id,
		Slug:   id + "-slug",
		Title:  "Package " + id,
		Images: []string{"/img/" + id + ".jpg"},
		Pricing: catalog.Pricing{
			OriginalPrice: decimal.NewFromInt(original),
			SalePrice:     decimal.NewFromInt(sale),
		},
	}
}

func TestCart_AddItemAggregates(t *testing.T) {
	var c Cart
	pkgA := newTestPackage("a", 1_000_000, 800_000)

	first := c.AddItem(pkgA, testNow)
	second := c.AddItem(pkgA, testNow.Add(time.Minute))

	require.Len(t, c.Items, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, c.ItemCount())
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, testNow, c.Items[0].AddedAt)
}

func TestCart_AddItemCapturesPrices(t *testing.T) {
	var c Cart
	line := c.AddItem(newTestPackage("sale", 1_000_000, 800_000), testNow)
	assert.True(t, decimal.NewFromInt(800_000).Equal(line.UnitPrice))
	assert.True(t, decimal.NewFromInt(1_000_000).Equal(line.OriginalPrice))
	assert.Equal(t, "/img/sale.jpg", line.Image)

	line = c.AddItem(newTestPackage("list", 500_000, 0), testNow)
	assert.True(t, decimal.NewFromInt(500_000).Equal(line.UnitPrice))
}

func TestCart_TotalAndItemCount(t *testing.T) {
	var c Cart
	a := c.AddItem(newTestPackage("a", 300_000, 0), testNow)
	c.AddItem(newTestPackage("b", 200_000, 150_000), testNow)
	require.NoError(t, c.UpdateQuantity(a.ID, 3))

	assert.True(t, decimal.NewFromInt(1_050_000).Equal(c.Total()))
	assert.Equal(t, 4, c.ItemCount())
}

func TestCart_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		wantLines int
		wantCount int
	}{
		{name: "set directly", qty: 7, wantLines: 2, wantCount: 8},
		{name: "zero removes", qty: 0, wantLines: 1, wantCount: 1},
		{name: "negative removes", qty: -2, wantLines: 1, wantCount: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cart
			a := c.AddItem(newTestPackage("a", 100, 0), testNow)
			c.AddItem(newTestPackage("b", 100, 0), testNow)

			require.NoError(t, c.UpdateQuantity(a.ID, tt.qty))
			assert.Len(t, c.Items, tt.wantLines)
			assert.Equal(t, tt.wantCount, c.ItemCount())
		})
	}

	var c Cart
	err := c.UpdateQuantity("missing", 1)
	require.ErrorIs(t, err, ErrLineNotFound)
}

func TestCart_RemoveItemByLineID(t *testing.T) {
	var c Cart
	a := c.AddItem(newTestPackage("a", 100, 0), testNow)
	c.AddItem(newTestPackage("b", 100, 0), testNow)

	c.RemoveItem("a")
	assert.Len(t, c.Items, 2, "package id is not a line id")

	c.RemoveItem(a.ID)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "b", c.Items[0].PackageID)
}

func TestCart_ClearKeepsCoupon(t *testing.T) {
	var c Cart
	c.AddItem(newTestPackage("a", 100, 0), testNow)
	c.ApplyCoupon(&coupon.Rule{Code: "WELCOME10", DiscountType: coupon.DiscountPercent, Value: decimal.NewFromInt(10)})

	c.Clear()

	assert.Empty(t, c.Items)
	assert.Zero(t, c.ItemCount())
	require.NotNil(t, c.Coupon)
	assert.Equal(t, "WELCOME10", c.Coupon.Code)
}

func TestCart_Totals(t *testing.T) {
	tests := []struct {
		name         string
		rule         *coupon.Rule
		subtotal     int64
		wantDiscount int64
		wantTotal    int64
		wantActive   bool
	}{
		{
			name:      "no coupon",
			subtotal:  1_000_000,
			wantTotal: 1_000_000,
		},
		{
			name:         "percent 10",
			rule:         &coupon.Rule{Code: "WELCOME10", DiscountType: coupon.DiscountPercent, Value: decimal.NewFromInt(10)},
			subtotal:     1_000_000,
			wantDiscount: 100_000,
			wantTotal:    900_000,
			wantActive:   true,
		},
		{
			name:         "fixed 50k",
			rule:         &coupon.Rule{Code: "SAVE50K", DiscountType: coupon.DiscountFixed, Value: decimal.NewFromInt(50_000)},
			subtotal:     1_000_000,
			wantDiscount: 50_000,
			wantTotal:    950_000,
			wantActive:   true,
		},
		{
			name:         "fixed above subtotal never goes negative",
			rule:         &coupon.Rule{Code: "SAVE50K", DiscountType: coupon.DiscountFixed, Value: decimal.NewFromInt(50_000)},
			subtotal:     20_000,
			wantDiscount: 20_000,
			wantTotal:    0,
			wantActive:   true,
		},
		{
			name: "subtotal dropped below minimum",
			rule: &coupon.Rule{
				Code:           "WELCOME15",
				DiscountType:   coupon.DiscountPercent,
				Value:          decimal.NewFromInt(15),
				MinOrderAmount: decimal.NewFromInt(500_000),
			},
			subtotal:  400_000,
			wantTotal: 400_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cart
			c.AddItem(newTestPackage("a", tt.subtotal, 0), testNow)
			if tt.rule != nil {
				c.ApplyCoupon(tt.rule)
			}

			got := c.Totals()
			assert.True(t, decimal.NewFromInt(tt.subtotal).Equal(got.Subtotal))
			assert.True(t, decimal.NewFromInt(tt.wantDiscount).Equal(got.Discount),
				"expected discount %d, got %s", tt.wantDiscount, got.Discount)
			assert.True(t, decimal.NewFromInt(tt.wantTotal).Equal(got.Total),
				"expected total %d, got %s", tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantActive, got.CouponActive)
			assert.Equal(t, 1, got.ItemCount)
		})
	}
}

type mockPackages map[string]catalog.Package

func (m mockPackages) PackageByID(id string) (catalog.Package, error) {
	p, ok := m[id]
	if !ok {
		return catalog.Package{}, catalog.ErrNotFound
	}
	return p, nil
}

func TestService_AddPackage(t *testing.T) {
	svc := NewService(mockPackages{"a": newTestPackage("a", 100, 0)}, nil)
	svc.now = func() time.Time { return testNow }

	var c Cart
	line, err := svc.AddPackage(&c, "a")
	require.NoError(t, err)
	assert.Equal(t, testNow, line.AddedAt)

	_, err = svc.AddPackage(&c, "missing")
	require.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Len(t, c.Items, 1)
}

func TestService_ApplyCoupon(t *testing.T) {
	validator := coupon.NewRepoValidator(coupon.NewStaticRepository(coupon.Storefront()...))
	svc := NewService(mockPackages{}, validator)
	ctx := context.Background()

	var c Cart
	c.AddItem(newTestPackage("a", 1_000_000, 0), testNow)

	d, err := svc.ApplyCoupon(ctx, &c, " welcome10 ")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100_000).Equal(d.Amount))
	require.NotNil(t, c.Coupon)
	assert.Equal(t, "WELCOME10", c.Coupon.Code)

	_, err = svc.ApplyCoupon(ctx, &c, "NOPE")
	require.ErrorIs(t, err, coupon.ErrInvalidCoupon)
	assert.Equal(t, "WELCOME10", c.Coupon.Code, "invalid code keeps the applied coupon")

	_, err = svc.ApplyCoupon(ctx, &c, "SAVE50K")
	require.NoError(t, err)
	assert.Equal(t, "SAVE50K", c.Coupon.Code)
	assert.True(t, decimal.NewFromInt(950_000).Equal(c.Totals().Total))
}
