package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, c.Categories())
	assert.NotEmpty(t, c.Packages(""))
	assert.NotEmpty(t, c.Accommodations())
	assert.NotEmpty(t, c.Restaurants())
	assert.NotEmpty(t, c.Attractions())
}

func TestPackage_Price(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	onSale, err := c.PackageBySlug("juvederm-filler-gangnam-tour")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(890000).Equal(onSale.Price()))

	listPrice, err := c.PackageByID("pkg-003")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3900000).Equal(listPrice.Price()))
}

func TestLookups_NotFound(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.PackageBySlug("no-such-package")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.PackageByID("pkg-999")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Hospital("h999")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Accommodation("a999")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPackages_ByCategory(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	dental := c.Packages("dental")
	require.Len(t, dental, 2)
	for _, p := range dental {
		assert.Equal(t, "dental", p.Category)
	}
	assert.Empty(t, c.Packages("unknown"))
}

func TestHospitalsForCategory(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name     string
		category string
		wantIDs  []string
	}{
		{name: "beauty matches dermatology", category: "beauty", wantIDs: []string{"h1"}},
		{name: "dental matches dental clinic", category: "dental", wantIDs: []string{"h3"}},
		{name: "stemcell matches regenerative", category: "stemcell", wantIDs: []string{"h5"}},
		{name: "no match falls back to all", category: "eye", wantIDs: []string{"h1", "h2", "h3", "h4", "h5"}},
		{name: "empty category returns all", category: "", wantIDs: []string{"h1", "h2", "h3", "h4", "h5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.HospitalsForCategory(tt.category)
			ids := make([]string, len(got))
			for i, h := range got {
				ids[i] = h.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestActiveEvents(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	march := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)
	assert.Len(t, c.ActiveEvents(march), 3)

	april := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.Len(t, c.ActiveEvents(april), 2)

	before := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, c.ActiveEvents(before))
}

func TestCatalog_Event(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	ev, err := c.Event("evt-001")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), ev.EndDate.UTC())

	_, err = c.Event("evt-404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantField string
	}{
		{
			name: "duplicate package id",
			doc: `
packages:
  - {id: p1, slug: a, title: A, category: beauty, pricing: {originalPrice: 10}}
  - {id: p1, slug: b, title: B, category: beauty, pricing: {originalPrice: 10}}
`,
			wantField: "id",
		},
		{
			name: "duplicate slug",
			doc: `
packages:
  - {id: p1, slug: a, title: A, category: beauty, pricing: {originalPrice: 10}}
  - {id: p2, slug: a, title: B, category: beauty, pricing: {originalPrice: 10}}
`,
			wantField: "slug",
		},
		{
			name: "sale above original",
			doc: `
packages:
  - {id: p1, slug: a, title: A, category: beauty, pricing: {originalPrice: 10, salePrice: 20}}
`,
			wantField: "pricing.salePrice",
		},
		{
			name: "missing original price",
			doc: `
packages:
  - {id: p1, slug: a, title: A, category: beauty}
`,
			wantField: "pricing.originalPrice",
		},
		{
			name: "hospital without name",
			doc: `
hospitals:
  - {id: h1}
`,
			wantField: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(strings.NewReader("hospitals:\n  - {id: h1, name: X, beds: 10}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode catalog")
}
