// Package catalog provides the read-only storefront catalog: packages,
// hospitals, accommodations, restaurants, attractions, categories and
// promotional events.
package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested catalog entity does not exist.
var ErrNotFound = errors.New("catalog entity not found")

// Category groups packages and maps to hospital specialties.
type Category struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Emoji       string   `yaml:"emoji"`
	Specialties []string `yaml:"specialties"`
}

// Pricing holds the list and sale price of a package.
type Pricing struct {
	OriginalPrice   decimal.Decimal `yaml:"originalPrice"`
	SalePrice       decimal.Decimal `yaml:"salePrice"`
	DiscountPercent int             `yaml:"discountPercent"`
}

// Location is the city and district where a package takes place.
type Location struct {
	City     string `yaml:"city" json:"city"`
	District string `yaml:"district" json:"district"`
}

// Duration is the length of a package in days and nights.
type Duration struct {
	Days   int `yaml:"days"`
	Nights int `yaml:"nights"`
}

// Package is a bookable medical tourism package.
type Package struct {
	ID          string   `yaml:"id"`
	Slug        string   `yaml:"slug"`
	Title       string   `yaml:"title"`
	Images      []string `yaml:"images"`
	Pricing     Pricing  `yaml:"pricing"`
	Rating      float64  `yaml:"rating"`
	ReviewCount int      `yaml:"reviewCount"`
	Location    Location `yaml:"location"`
	Category    string   `yaml:"category"`
	Subcategory string   `yaml:"subcategory"`
	Duration    Duration `yaml:"duration"`
	Badges      []string `yaml:"badges"`
}

// Price returns the sale price when one is set, otherwise the original price.
func (p Package) Price() decimal.Decimal {
	if p.Pricing.SalePrice.IsPositive() {
		return p.Pricing.SalePrice
	}
	return p.Pricing.OriginalPrice
}

// Image returns the first package image, or an empty string.
func (p Package) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Hospital is a partner clinic.
type Hospital struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	Specialties    []string `yaml:"specialties"`
	Certifications []string `yaml:"certifications"`
	Rating         float64  `yaml:"rating"`
}

// Accommodation is a place to stay near partner hospitals.
type Accommodation struct {
	ID                 string          `yaml:"id"`
	Name               string          `yaml:"name"`
	Type               string          `yaml:"type"`
	PricePerNight      decimal.Decimal `yaml:"pricePerNight"`
	DistanceToHospital string          `yaml:"distanceToHospital"`
}

// Restaurant is an optional dining recommendation.
type Restaurant struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Cuisine    string  `yaml:"cuisine"`
	PriceRange string  `yaml:"priceRange"`
	Rating     float64 `yaml:"rating"`
}

// Attraction is an optional sightseeing recommendation.
type Attraction struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Kind     string  `yaml:"kind"`
	Duration string  `yaml:"duration"`
	Rating   float64 `yaml:"rating"`
}

// EventDiscount describes the headline discount of a promotional event.
type EventDiscount struct {
	Type        string          `yaml:"type"`
	Value       decimal.Decimal `yaml:"value"`
	MaxDiscount decimal.Decimal `yaml:"maxDiscount"`
}

// Event is a time-boxed promotion.
type Event struct {
	ID         string        `yaml:"id"`
	Title      string        `yaml:"title"`
	StartDate  time.Time     `yaml:"startDate"`
	EndDate    time.Time     `yaml:"endDate"`
	Type       string        `yaml:"type"`
	Discount   EventDiscount `yaml:"discount"`
	CouponCode string        `yaml:"couponCode"`
	Active     bool          `yaml:"active"`
}

// Catalog is an immutable, validated set of catalog collections with
// id indexes.
type Catalog struct {
	categories     []Category
	packages       []Package
	hospitals      []Hospital
	accommodations []Accommodation
	restaurants    []Restaurant
	attractions    []Attraction
	events         []Event

	packageByID   map[string]int
	packageBySlug map[string]int
}

// Categories returns all categories in catalog order.
func (c *Catalog) Categories() []Category { return slices.Clone(c.categories) }

// Accommodations returns all accommodations in catalog order.
func (c *Catalog) Accommodations() []Accommodation { return slices.Clone(c.accommodations) }

// Restaurants returns all restaurants in catalog order.
func (c *Catalog) Restaurants() []Restaurant { return slices.Clone(c.restaurants) }

// Attractions returns all attractions in catalog order.
func (c *Catalog) Attractions() []Attraction { return slices.Clone(c.attractions) }

// Packages returns packages in the given category, or all packages when
// category is empty.
func (c *Catalog) Packages(category string) []Package {
	if category == "" {
		return slices.Clone(c.packages)
	}
	var out []Package
	for _, p := range c.packages {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// PackageByID looks up a package by its identifier.
func (c *Catalog) PackageByID(id string) (Package, error) {
	i, ok := c.packageByID[id]
	if !ok {
		return Package{}, errors.Wrapf(ErrNotFound, "package %q", id)
	}
	return c.packages[i], nil
}

// PackageBySlug looks up a package by its URL slug.
func (c *Catalog) PackageBySlug(slug string) (Package, error) {
	i, ok := c.packageBySlug[slug]
	if !ok {
		return Package{}, errors.Wrapf(ErrNotFound, "package %q", slug)
	}
	return c.packages[i], nil
}

// Category looks up a category by id.
func (c *Catalog) Category(id string) (Category, error) {
	return find(c.categories, id, func(v Category) string { return v.ID }, "category")
}

// Hospital looks up a hospital by id.
func (c *Catalog) Hospital(id string) (Hospital, error) {
	return find(c.hospitals, id, func(v Hospital) string { return v.ID }, "hospital")
}

// Accommodation looks up an accommodation by id.
func (c *Catalog) Accommodation(id string) (Accommodation, error) {
	return find(c.accommodations, id, func(v Accommodation) string { return v.ID }, "accommodation")
}

// Restaurant looks up a restaurant by id.
func (c *Catalog) Restaurant(id string) (Restaurant, error) {
	return find(c.restaurants, id, func(v Restaurant) string { return v.ID }, "restaurant")
}

// Attraction looks up an attraction by id.
func (c *Catalog) Attraction(id string) (Attraction, error) {
	return find(c.attractions, id, func(v Attraction) string { return v.ID }, "attraction")
}

// HospitalsForCategory returns hospitals with at least one specialty matching
// the category's keywords (case-insensitive substring match). An empty or
// unknown category, or a category with no matching hospital, yields every
// hospital so the treatment step is never left without options.
func (c *Catalog) HospitalsForCategory(category string) []Hospital {
	if category == "" {
		return slices.Clone(c.hospitals)
	}
	keywords := []string{category}
	if cat, err := c.Category(category); err == nil && len(cat.Specialties) > 0 {
		keywords = cat.Specialties
	}

	var matched []Hospital
	for _, h := range c.hospitals {
		if matchesAny(h.Specialties, keywords) {
			matched = append(matched, h)
		}
	}
	if len(matched) == 0 {
		return slices.Clone(c.hospitals)
	}
	return matched
}

// Event returns the event with id, active or not.
func (c *Catalog) Event(id string) (Event, error) {
	return find(c.events, id, func(v Event) string { return v.ID }, "event")
}

// ActiveEvents returns active events whose date window contains now. The end
// date is inclusive for the whole day.
func (c *Catalog) ActiveEvents(now time.Time) []Event {
	var out []Event
	for _, e := range c.events {
		if !e.Active {
			continue
		}
		if now.Before(e.StartDate) || !now.Before(e.EndDate.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesAny(specialties, keywords []string) bool {
	for _, s := range specialties {
		s = strings.ToLower(s)
		for _, k := range keywords {
			if strings.Contains(s, strings.ToLower(k)) {
				return true
			}
		}
	}
	return false
}

func find[T any](items []T, id string, key func(T) string, kind string) (T, error) {
	for _, v := range items {
		if key(v) == id {
			return v, nil
		}
	}
	var zero T
	return zero, errors.Wrapf(ErrNotFound, "%s %q", kind, id)
}
