package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var defaultCatalog []byte

// ValidationError describes a catalog record that failed load-time checks.
type ValidationError struct {
	Kind  string
	Index int
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s[%d].%s: %s", e.Kind, e.Index, e.Field, e.Msg)
}

type document struct {
	Categories     []Category      `yaml:"categories"`
	Packages       []Package       `yaml:"packages"`
	Hospitals      []Hospital      `yaml:"hospitals"`
	Accommodations []Accommodation `yaml:"accommodations"`
	Restaurants    []Restaurant    `yaml:"restaurants"`
	Attractions    []Attraction    `yaml:"attractions"`
	Events         []Event         `yaml:"events"`
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// LoadFile loads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}

// Load decodes a YAML catalog document and validates every record.
func Load(r io.Reader) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	if err := doc.validate(); err != nil {
		return nil, errors.Wrap(err, "validate catalog")
	}

	c := &Catalog{
		categories:     doc.Categories,
		packages:       doc.Packages,
		hospitals:      doc.Hospitals,
		accommodations: doc.Accommodations,
		restaurants:    doc.Restaurants,
		attractions:    doc.Attractions,
		events:         doc.Events,
		packageByID:    make(map[string]int, len(doc.Packages)),
		packageBySlug:  make(map[string]int, len(doc.Packages)),
	}
	for i, p := range doc.Packages {
		c.packageByID[p.ID] = i
		c.packageBySlug[p.Slug] = i
	}
	return c, nil
}

func (d *document) validate() error {
	if err := uniqueIDs("categories", d.Categories, func(v Category) string { return v.ID }); err != nil {
		return err
	}
	for i, c := range d.Categories {
		if c.Name == "" {
			return &ValidationError{Kind: "categories", Index: i, Field: "name", Msg: "required"}
		}
	}

	if err := uniqueIDs("packages", d.Packages, func(v Package) string { return v.ID }); err != nil {
		return err
	}
	if err := uniqueIDs("packages", d.Packages, func(v Package) string { return v.Slug }); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) && ve.Field == "id" {
			ve.Field = "slug"
		}
		return err
	}
	for i, p := range d.Packages {
		if err := validatePackage(i, p); err != nil {
			return err
		}
	}

	if err := uniqueIDs("hospitals", d.Hospitals, func(v Hospital) string { return v.ID }); err != nil {
		return err
	}
	for i, h := range d.Hospitals {
		if h.Name == "" {
			return &ValidationError{Kind: "hospitals", Index: i, Field: "name", Msg: "required"}
		}
	}

	if err := uniqueIDs("accommodations", d.Accommodations, func(v Accommodation) string { return v.ID }); err != nil {
		return err
	}
	for i, a := range d.Accommodations {
		if a.PricePerNight.IsNegative() {
			return &ValidationError{Kind: "accommodations", Index: i, Field: "pricePerNight", Msg: "must not be negative"}
		}
	}

	if err := uniqueIDs("restaurants", d.Restaurants, func(v Restaurant) string { return v.ID }); err != nil {
		return err
	}
	if err := uniqueIDs("attractions", d.Attractions, func(v Attraction) string { return v.ID }); err != nil {
		return err
	}

	if err := uniqueIDs("events", d.Events, func(v Event) string { return v.ID }); err != nil {
		return err
	}
	for i, e := range d.Events {
		if e.EndDate.Before(e.StartDate) {
			return &ValidationError{Kind: "events", Index: i, Field: "endDate", Msg: "before startDate"}
		}
	}
	return nil
}

func validatePackage(i int, p Package) error {
	switch {
	case p.Slug == "":
		return &ValidationError{Kind: "packages", Index: i, Field: "slug", Msg: "required"}
	case p.Title == "":
		return &ValidationError{Kind: "packages", Index: i, Field: "title", Msg: "required"}
	case p.Category == "":
		return &ValidationError{Kind: "packages", Index: i, Field: "category", Msg: "required"}
	case !p.Pricing.OriginalPrice.IsPositive():
		return &ValidationError{Kind: "packages", Index: i, Field: "pricing.originalPrice", Msg: "must be positive"}
	case p.Pricing.SalePrice.IsNegative():
		return &ValidationError{Kind: "packages", Index: i, Field: "pricing.salePrice", Msg: "must not be negative"}
	case p.Pricing.SalePrice.GreaterThan(p.Pricing.OriginalPrice):
		return &ValidationError{Kind: "packages", Index: i, Field: "pricing.salePrice", Msg: "exceeds originalPrice"}
	}
	return nil
}

func uniqueIDs[T any](kind string, items []T, key func(T) string) error {
	seen := make(map[string]struct{}, len(items))
	for i, v := range items {
		id := key(v)
		if id == "" {
			return &ValidationError{Kind: kind, Index: i, Field: "id", Msg: "required"}
		}
		if _, dup := seen[id]; dup {
			return &ValidationError{Kind: kind, Index: i, Field: "id", Msg: fmt.Sprintf("duplicate %q", id)}
		}
		seen[id] = struct{}{}
	}
	return nil
}
