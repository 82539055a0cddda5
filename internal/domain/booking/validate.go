package booking

import (
	"math/rand/v2"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// FieldError is a user-facing message for one form field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

// ValidationError lists the fields blocking a step. It matches
// ErrStepIncomplete with errors.Is.
type ValidationError struct {
	Step   Step
	Fields []FieldError
}

func newValidationError(step Step, fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Step: step, Fields: fields}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Msg
	}
	return e.Step.String() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrStepIncomplete }

var messages = map[string]string{
	"firstName":      "First name is required",
	"lastName":       "Last name is required",
	"email":          "Valid email is required",
	"phone":          "Valid phone number is required",
	"nationality":    "Nationality is required",
	"passportNumber": "Passport number is required",
	"consentTerms":   "You must agree to the terms",
	"consentMedical": "You must provide medical consent",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateInfo checks the traveler form and returns a ValidationError naming
// every invalid field.
func ValidateInfo(info PersonalInfo) error {
	err := validate.Struct(info)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate personal info")
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = "is invalid"
		}
		fields = append(fields, FieldError{Field: fe.Field(), Msg: msg})
	}
	return newValidationError(StepInformation, fields)
}

// Check validates the requirements of the current step.
func (d *Draft) Check(now time.Time) error {
	switch d.Step {
	case StepSchedule:
		return d.checkSchedule(now)
	case StepOptions:
		return nil
	case StepInformation:
		return ValidateInfo(d.Info)
	case StepPayment:
		return d.checkPayment()
	default:
		return errors.Wrapf(ErrStepIncomplete, "no step after %s", d.Step)
	}
}

// Next validates the current step and advances. Leaving the payment step
// confirms the booking and assigns its number.
func (d *Draft) Next(now time.Time) error {
	if err := d.Check(now); err != nil {
		return err
	}
	if d.Step == StepPayment {
		d.BookingNumber = NewBookingNumber(now)
	}
	d.Step++
	return nil
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewBookingNumber returns KMT-<millis in base36>-<4 random base36>, upper
// case.
func NewBookingNumber(now time.Time) string {
	var suffix [4]byte
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return strings.ToUpper("KMT-" + strconv.FormatInt(now.UnixMilli(), 36) + "-" + string(suffix[:]))
}
