// Package wishlist keeps the packages a visitor has saved for later.
package wishlist

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kmedi-tour/internal/catalog"
)

// Item is a package snapshot taken when it was saved.
type Item struct {
	ID              string           `json:"id"`
	Slug            string           `json:"slug"`
	Title           string           `json:"title"`
	Image           string           `json:"image"`
	Price           decimal.Decimal  `json:"price"`
	OriginalPrice   decimal.Decimal  `json:"originalPrice"`
	DiscountPercent int              `json:"discountPercent"`
	Rating          float64          `json:"rating"`
	ReviewCount     int              `json:"reviewCount"`
	Location        catalog.Location `json:"location"`
	Badges          []string         `json:"badges"`
	AddedAt         time.Time        `json:"addedAt"`
}

// Wishlist is an ordered set of saved packages keyed by package id.
type Wishlist struct {
	Items []Item `json:"items"`
}

// Toggle saves pkg, or removes it when already saved. It reports whether
// the package is saved afterwards.
func (w *Wishlist) Toggle(pkg catalog.Package, now time.Time) bool {
	if i := w.index(pkg.ID); i >= 0 {
		w.Items = slices.Delete(w.Items, i, i+1)
		return false
	}
	w.Items = append(w.Items, Item{
		ID:              pkg.ID,
		Slug:            pkg.Slug,
		Title:           pkg.Title,
		Image:           pkg.Image(),
		Price:           pkg.Price(),
		OriginalPrice:   pkg.Pricing.OriginalPrice,
		DiscountPercent: pkg.Pricing.DiscountPercent,
		Rating:          pkg.Rating,
		ReviewCount:     pkg.ReviewCount,
		Location:        pkg.Location,
		Badges:          slices.Clone(pkg.Badges),
		AddedAt:         now,
	})
	return true
}

// Contains reports whether the package is saved.
func (w *Wishlist) Contains(packageID string) bool {
	return w.index(packageID) >= 0
}

// Clear removes every saved package.
func (w *Wishlist) Clear() {
	w.Items = nil
}

// Count returns the number of saved packages.
func (w *Wishlist) Count() int {
	return len(w.Items)
}

func (w *Wishlist) index(packageID string) int {
	return slices.IndexFunc(w.Items, func(it Item) bool { return it.ID == packageID })
}
