// Package recent tracks recently viewed packages.
package recent

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/kmedi-tour/internal/catalog"
)

// Limit is the maximum number of remembered views.
const Limit = 50

// Item is a package snapshot taken when it was viewed.
type Item struct {
	ID            string           `json:"id"`
	Slug          string           `json:"slug"`
	Title         string           `json:"title"`
	Image         string           `json:"image"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice decimal.Decimal  `json:"originalPrice"`
	Rating        float64          `json:"rating"`
	ReviewCount   int              `json:"reviewCount"`
	Location      catalog.Location `json:"location"`
	ViewedAt      time.Time        `json:"viewedAt"`
}

// List holds views newest first, at most one per package.
type List struct {
	Items []Item `json:"items"`
}

// Add records a view of pkg. An earlier view of the same package is
// replaced and the list is capped at Limit entries.
func (l *List) Add(pkg catalog.Package, now time.Time) {
	items := slices.DeleteFunc(l.Items, func(it Item) bool { return it.ID == pkg.ID })
	items = slices.Insert(items, 0, Item{
		ID:            pkg.ID,
		Slug:          pkg.Slug,
		Title:         pkg.Title,
		Image:         pkg.Image(),
		Price:         pkg.Price(),
		OriginalPrice: pkg.Pricing.OriginalPrice,
		Rating:        pkg.Rating,
		ReviewCount:   pkg.ReviewCount,
		Location:      pkg.Location,
		ViewedAt:      now,
	})
	if len(items) > Limit {
		items = items[:Limit]
	}
	l.Items = items
}

// Clear forgets every view.
func (l *List) Clear() {
	l.Items = nil
}

// Groups buckets views by calendar day relative to now.
type Groups struct {
	Today     []Item `json:"today"`
	Yesterday []Item `json:"yesterday"`
	ThisWeek  []Item `json:"thisWeek"`
	Older     []Item `json:"older"`
}

// Grouped buckets views into today, yesterday, the rest of the past week and
// older, using midnight in now's location as the day boundary.
func (l *List) Grouped(now time.Time) Groups {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterday := today.AddDate(0, 0, -1)
	weekAgo := today.AddDate(0, 0, -7)

	var g Groups
	for _, it := range l.Items {
		switch v := it.ViewedAt; {
		case !v.Before(today):
			g.Today = append(g.Today, it)
		case !v.Before(yesterday):
			g.Yesterday = append(g.Yesterday, it)
		case !v.Before(weekAgo):
			g.ThisWeek = append(g.ThisWeek, it)
		default:
			g.Older = append(g.Older, it)
		}
	}
	return g
}
