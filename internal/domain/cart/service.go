package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/kmedi-tour/internal/catalog"
	"github.com/xenking/kmedi-tour/internal/domain/coupon"
)

// Packages looks up catalog packages for the cart.
type Packages interface {
	PackageByID(id string) (catalog.Package, error)
}

// Service encapsulates cart operations that need the catalog or coupon
// validation.
type Service struct {
	packages Packages
	coupons  coupon.Validator
	now      func() time.Time
}

// NewService creates a cart Service.
func NewService(packages Packages, coupons coupon.Validator) *Service {
	return &Service{
		packages: packages,
		coupons:  coupons,
		now:      time.Now,
	}
}

// AddPackage resolves packageID in the catalog and adds it to c.
func (s *Service) AddPackage(c *Cart, packageID string) (LineItem, error) {
	pkg, err := s.packages.PackageByID(packageID)
	if err != nil {
		return LineItem{}, errors.Wrap(err, "resolve package")
	}
	return c.AddItem(pkg, s.now()), nil
}

// ApplyCoupon validates code against the cart subtotal and, on success,
// stores the coupon on c. On any error the cart is left unchanged.
func (s *Service) ApplyCoupon(ctx context.Context, c *Cart, code string) (*coupon.Discount, error) {
	rule, d, err := s.coupons.Validate(ctx, code, c.Total())
	if err != nil {
		return nil, err
	}
	c.ApplyCoupon(rule)
	return d, nil
}
