// Package booking implements the single-package booking flow: schedule,
// add-on options, traveler information, payment and confirmation. Payment is
// simulated; a confirmed booking only receives a booking number.
package booking

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrStepIncomplete is returned when a step's requirements are not met.
	ErrStepIncomplete = errors.New("booking step incomplete")
	// ErrUnknownOption is returned for an add-on option id that does not exist.
	ErrUnknownOption = errors.New("unknown booking option")
)

// MaxTravelers bounds the traveler count of one booking.
const MaxTravelers = 10

// Step is one phase of the booking flow.
type Step int

const (
	StepSchedule Step = iota + 1
	StepOptions
	StepInformation
	StepPayment
	StepConfirmation
)

func (s Step) String() string {
	switch s {
	case StepSchedule:
		return "Date & Travelers"
	case StepOptions:
		return "Options"
	case StepInformation:
		return "Information"
	case StepPayment:
		return "Payment"
	case StepConfirmation:
		return "Confirmation"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Option is a paid add-on, priced per booking.
type Option struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Options lists the add-ons offered with every package.
var Options = []Option{
	{ID: "opt-1", Name: "VIP Airport Transfer (Luxury Sedan)", Price: decimal.NewFromInt(150_000)},
	{ID: "opt-2", Name: "Extra Night Stay (5-star Hotel)", Price: decimal.NewFromInt(280_000)},
	{ID: "opt-3", Name: "Professional Photo Shoot", Price: decimal.NewFromInt(120_000)},
	{ID: "opt-4", Name: "Korean Language Pocket Guide", Price: decimal.NewFromInt(15_000)},
	{ID: "opt-5", Name: "Travel Insurance Premium", Price: decimal.NewFromInt(45_000)},
	{ID: "opt-6", Name: "Post-treatment Follow-up (Online)", Price: decimal.NewFromInt(80_000)},
}

// LookupOption finds an add-on by id.
func LookupOption(id string) (Option, error) {
	i := slices.IndexFunc(Options, func(o Option) bool { return o.ID == id })
	if i < 0 {
		return Option{}, errors.Wrapf(ErrUnknownOption, "%q", id)
	}
	return Options[i], nil
}

// PaymentMethod identifies a (simulated) payment channel.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit-card"
	PaymentPayPal     PaymentMethod = "paypal"
	PaymentAlipay     PaymentMethod = "alipay"
)

// PaymentMethods lists supported payment methods in display order.
var PaymentMethods = []PaymentMethod{PaymentCreditCard, PaymentPayPal, PaymentAlipay}

// PersonalInfo is the lead traveler form.
type PersonalInfo struct {
	FirstName      string `json:"firstName" validate:"min=2"`
	LastName       string `json:"lastName" validate:"min=2"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"min=8"`
	Nationality    string `json:"nationality" validate:"min=2"`
	PassportNumber string `json:"passportNumber" validate:"min=5"`
	MedicalNotes   string `json:"medicalNotes"`
	ConsentTerms   bool   `json:"consentTerms" validate:"eq=true"`
	ConsentMedical bool   `json:"consentMedical" validate:"eq=true"`
}

// Quote is the price breakdown of a booking.
type Quote struct {
	BasePrice    decimal.Decimal
	Travelers    int
	Options      []Option
	OptionsTotal decimal.Decimal
	Subtotal     decimal.Decimal
}

// NewQuote prices base per traveler plus each selected option once. Repeated
// option IDs are charged once.
func NewQuote(base decimal.Decimal, travelers int, optionIDs []string) (Quote, error) {
	q := Quote{
		BasePrice:    base,
		Travelers:    travelers,
		OptionsTotal: decimal.Zero,
	}
	for i, id := range optionIDs {
		o, err := LookupOption(id)
		if err != nil {
			return Quote{}, err
		}
		if slices.Contains(optionIDs[:i], id) {
			continue
		}
		q.Options = append(q.Options, o)
		q.OptionsTotal = q.OptionsTotal.Add(o.Price)
	}
	q.Subtotal = base.Mul(decimal.NewFromInt(int64(travelers))).Add(q.OptionsTotal)
	return q, nil
}

// Draft is an in-progress booking. The zero value is not usable; see
// NewDraft.
type Draft struct {
	Step          Step
	Date          string
	Travelers     int
	Options       []string
	Info          PersonalInfo
	PaymentMethod PaymentMethod
	BookingNumber string
}

// NewDraft starts a booking on the schedule step with one traveler paying
// by credit card.
func NewDraft() *Draft {
	return &Draft{
		Step:          StepSchedule,
		Travelers:     1,
		PaymentMethod: PaymentCreditCard,
	}
}

// SetTravelers sets the traveler count, clamped to [1, MaxTravelers].
func (d *Draft) SetTravelers(n int) {
	d.Travelers = min(max(n, 1), MaxTravelers)
}

// ToggleOption selects or deselects an add-on.
func (d *Draft) ToggleOption(id string) error {
	if _, err := LookupOption(id); err != nil {
		return err
	}
	if i := slices.Index(d.Options, id); i >= 0 {
		d.Options = slices.Delete(d.Options, i, i+1)
		return nil
	}
	d.Options = append(d.Options, id)
	return nil
}

// SetOptions replaces the selected add-ons with ids, in order and without
// repeats. Nothing changes when an id is unknown.
func (d *Draft) SetOptions(ids []string) error {
	opts := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := LookupOption(id); err != nil {
			return err
		}
		if !slices.Contains(opts, id) {
			opts = append(opts, id)
		}
	}
	d.Options = opts
	return nil
}

// Back moves to the previous step, never before the first. The confirmation
// step is final.
func (d *Draft) Back() {
	if d.Step > StepSchedule && d.Step < StepConfirmation {
		d.Step--
	}
}

// checkSchedule validates the date and traveler count against today.
func (d *Draft) checkSchedule(now time.Time) error {
	var fields []FieldError
	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(d.Date), now.Location())
	switch {
	case d.Date == "":
		fields = append(fields, FieldError{Field: "date", Msg: "Please select a date"})
	case err != nil:
		fields = append(fields, FieldError{Field: "date", Msg: "Date must be YYYY-MM-DD"})
	case date.Before(startOfDay(now)):
		fields = append(fields, FieldError{Field: "date", Msg: "Date must not be in the past"})
	}
	if d.Travelers < 1 || d.Travelers > MaxTravelers {
		fields = append(fields, travelersError)
	}
	return newValidationError(StepSchedule, fields)
}

func (d *Draft) checkPayment() error {
	if !slices.Contains(PaymentMethods, d.PaymentMethod) {
		return newValidationError(StepPayment, []FieldError{{Field: "paymentMethod", Msg: "Please choose a payment method"}})
	}
	return nil
}

var travelersError = FieldError{
	Field: "travelers",
	Msg:   fmt.Sprintf("Travelers must be between 1 and %d", MaxTravelers),
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
