package booking

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kmedi-tour/internal/catalog"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func validInfo() PersonalInfo {
	return PersonalInfo{
		FirstName:      "Jane",
		LastName:       "Doe",
		Email:          "jane@example.com",
		Phone:          "+1 555 0100",
		Nationality:    "US",
		PassportNumber: "X1234567",
		ConsentTerms:   true,
		ConsentMedical: true,
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	names := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		names[i] = f.Field
	}
	return names
}

func TestNewQuote(t *testing.T) {
	q, err := NewQuote(decimal.NewFromInt(890_000), 2, []string{"opt-1", "opt-4"})
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(165_000).Equal(q.OptionsTotal))
	assert.True(t, decimal.NewFromInt(1_945_000).Equal(q.Subtotal))
	assert.Len(t, q.Options, 2)

	q, err = NewQuote(decimal.NewFromInt(890_000), 2, []string{"opt-1", "opt-1"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150_000).Equal(q.OptionsTotal), "repeated option charged once")
	assert.True(t, decimal.NewFromInt(1_930_000).Equal(q.Subtotal))
	require.Len(t, q.Options, 1)
	assert.Equal(t, "opt-1", q.Options[0].ID)

	_, err = NewQuote(decimal.NewFromInt(1), 1, []string{"opt-99"})
	require.ErrorIs(t, err, ErrUnknownOption)
}

func TestDraft_SetTravelersClamps(t *testing.T) {
	d := NewDraft()
	d.SetTravelers(0)
	assert.Equal(t, 1, d.Travelers)
	d.SetTravelers(25)
	assert.Equal(t, MaxTravelers, d.Travelers)
	d.SetTravelers(4)
	assert.Equal(t, 4, d.Travelers)
}

func TestDraft_ToggleOption(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.ToggleOption("opt-2"))
	require.NoError(t, d.ToggleOption("opt-3"))
	require.NoError(t, d.ToggleOption("opt-2"))
	assert.Equal(t, []string{"opt-3"}, d.Options)

	require.ErrorIs(t, d.ToggleOption("opt-0"), ErrUnknownOption)
}

func TestDraft_SetOptions(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.SetOptions([]string{"opt-2", "opt-3", "opt-2"}))
	assert.Equal(t, []string{"opt-2", "opt-3"}, d.Options)

	require.ErrorIs(t, d.SetOptions([]string{"opt-1", "opt-0"}), ErrUnknownOption)
	assert.Equal(t, []string{"opt-2", "opt-3"}, d.Options, "unchanged on error")

	require.NoError(t, d.SetOptions(nil))
	assert.Empty(t, d.Options)
}

func TestDraft_ScheduleStep(t *testing.T) {
	tests := []struct {
		name       string
		date       string
		travelers  int
		wantFields []string
	}{
		{name: "today is allowed", date: "2026-03-10", travelers: 1},
		{name: "missing date", date: "", travelers: 1, wantFields: []string{"date"}},
		{name: "bad format", date: "10/03/2026", travelers: 1, wantFields: []string{"date"}},
		{name: "past date", date: "2026-03-09", travelers: 1, wantFields: []string{"date"}},
		{name: "too many travelers", date: "2026-04-01", travelers: 11, wantFields: []string{"travelers"}},
		{name: "both", date: "", travelers: 0, wantFields: []string{"date", "travelers"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft()
			d.Date = tt.date
			d.Travelers = tt.travelers

			err := d.Next(testNow)
			if tt.wantFields == nil {
				require.NoError(t, err)
				assert.Equal(t, StepOptions, d.Step)
				return
			}
			require.ErrorIs(t, err, ErrStepIncomplete)
			assert.Equal(t, tt.wantFields, fieldNames(t, err))
			assert.Equal(t, StepSchedule, d.Step)
		})
	}
}

func TestValidateInfo(t *testing.T) {
	require.NoError(t, ValidateInfo(validInfo()))

	tests := []struct {
		name   string
		mutate func(*PersonalInfo)
		field  string
	}{
		{name: "short first name", mutate: func(p *PersonalInfo) { p.FirstName = "J" }, field: "firstName"},
		{name: "short last name", mutate: func(p *PersonalInfo) { p.LastName = "" }, field: "lastName"},
		{name: "bad email", mutate: func(p *PersonalInfo) { p.Email = "jane" }, field: "email"},
		{name: "short phone", mutate: func(p *PersonalInfo) { p.Phone = "1234567" }, field: "phone"},
		{name: "short nationality", mutate: func(p *PersonalInfo) { p.Nationality = "U" }, field: "nationality"},
		{name: "short passport", mutate: func(p *PersonalInfo) { p.PassportNumber = "X12" }, field: "passportNumber"},
		{name: "terms not accepted", mutate: func(p *PersonalInfo) { p.ConsentTerms = false }, field: "consentTerms"},
		{name: "medical consent missing", mutate: func(p *PersonalInfo) { p.ConsentMedical = false }, field: "consentMedical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := validInfo()
			tt.mutate(&info)

			err := ValidateInfo(info)
			require.ErrorIs(t, err, ErrStepIncomplete)
			assert.Equal(t, []string{tt.field}, fieldNames(t, err))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, messages[tt.field], ve.Fields[0].Msg)
		})
	}
}

func TestDraft_FullFlow(t *testing.T) {
	d := NewDraft()
	d.Date = "2026-04-01"
	require.NoError(t, d.Next(testNow))
	require.NoError(t, d.Next(testNow), "options are optional")

	err := d.Next(testNow)
	require.ErrorIs(t, err, ErrStepIncomplete)
	assert.Equal(t, StepInformation, d.Step)

	d.Info = validInfo()
	require.NoError(t, d.Next(testNow))

	d.PaymentMethod = "bitcoin"
	require.ErrorIs(t, d.Next(testNow), ErrStepIncomplete)
	assert.Empty(t, d.BookingNumber)

	d.Back()
	assert.Equal(t, StepInformation, d.Step)
	require.NoError(t, d.Next(testNow))

	d.PaymentMethod = PaymentPayPal
	require.NoError(t, d.Next(testNow))
	assert.Equal(t, StepConfirmation, d.Step)
	assert.NotEmpty(t, d.BookingNumber)

	d.Back()
	assert.Equal(t, StepConfirmation, d.Step, "confirmation is final")
	require.Error(t, d.Next(testNow))
}

func TestNewBookingNumber(t *testing.T) {
	n := NewBookingNumber(testNow)
	assert.Regexp(t, regexp.MustCompile(`^KMT-[0-9A-Z]+-[0-9A-Z]{4}$`), n)
	assert.True(t, strings.HasPrefix(n, "KMT-MMKDQ5C0-"), n)
}

type mockPackages map[string]catalog.Package

func (m mockPackages) PackageBySlug(slug string) (catalog.Package, error) {
	p, ok := m[slug]
	if !ok {
		return catalog.Package{}, catalog.ErrNotFound
	}
	return p, nil
}

func TestService_Book(t *testing.T) {
	pkgs := mockPackages{
		"filler": {
			ID:      "pkg-002",
			Slug:    "filler",
			Pricing: catalog.Pricing{OriginalPrice: decimal.NewFromInt(1_200_000), SalePrice: decimal.NewFromInt(890_000)},
		},
	}
	svc := NewService(pkgs)
	svc.now = func() time.Time { return testNow }

	conf, err := svc.Book(Request{
		PackageSlug: "filler",
		Date:        "2026-03-20",
		Travelers:   2,
		Options:     []string{"opt-5"},
		Info:        validInfo(),
	})
	require.NoError(t, err)
	assert.Equal(t, PaymentCreditCard, conf.PaymentMethod)
	assert.True(t, decimal.NewFromInt(1_825_000).Equal(conf.Quote.Subtotal))
	assert.NotEmpty(t, conf.BookingNumber)

	conf, err = svc.Book(Request{
		PackageSlug: "filler",
		Date:        "2026-03-20",
		Travelers:   2,
		Options:     []string{"opt-5", "opt-5"},
		Info:        validInfo(),
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1_825_000).Equal(conf.Quote.Subtotal), "repeat keeps the option selected")
	assert.Len(t, conf.Quote.Options, 1)

	_, err = svc.Book(Request{PackageSlug: "missing"})
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = svc.Book(Request{PackageSlug: "filler", Date: "2026-03-20", Travelers: 1})
	require.ErrorIs(t, err, ErrStepIncomplete)

	q, err := svc.Quote("filler", 3, nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2_670_000).Equal(q.Subtotal))

	_, err = svc.Quote("filler", 0, nil)
	require.ErrorIs(t, err, ErrStepIncomplete)
}
