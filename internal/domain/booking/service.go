package booking

import (
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/kmedi-tour/internal/catalog"
)

// Packages looks up catalog packages by slug.
type Packages interface {
	PackageBySlug(slug string) (catalog.Package, error)
}

// Request is a complete booking submitted in one call.
type Request struct {
	PackageSlug   string
	Date          string
	Travelers     int
	Options       []string
	Info          PersonalInfo
	PaymentMethod PaymentMethod
}

// Confirmation is the result of a successful booking.
type Confirmation struct {
	BookingNumber string
	Package       catalog.Package
	Date          string
	Travelers     int
	PaymentMethod PaymentMethod
	Quote         Quote
}

// Service prices and confirms bookings.
type Service struct {
	packages Packages
	now      func() time.Time
}

// NewService creates a booking Service.
func NewService(packages Packages) *Service {
	return &Service{packages: packages, now: time.Now}
}

// Quote prices a booking without validating the schedule or form.
func (s *Service) Quote(slug string, travelers int, options []string) (Quote, error) {
	pkg, err := s.packages.PackageBySlug(slug)
	if err != nil {
		return Quote{}, errors.Wrap(err, "resolve package")
	}
	if travelers < 1 || travelers > MaxTravelers {
		return Quote{}, newValidationError(StepSchedule, []FieldError{travelersError})
	}
	return NewQuote(pkg.Price(), travelers, options)
}

// Book walks a draft through every step with the same gates as the
// interactive flow and returns the confirmation.
func (s *Service) Book(req Request) (*Confirmation, error) {
	pkg, err := s.packages.PackageBySlug(req.PackageSlug)
	if err != nil {
		return nil, errors.Wrap(err, "resolve package")
	}

	d := NewDraft()
	d.Date = req.Date
	d.Travelers = req.Travelers
	d.Info = req.Info
	if req.PaymentMethod != "" {
		d.PaymentMethod = req.PaymentMethod
	}
	if err := d.SetOptions(req.Options); err != nil {
		return nil, err
	}

	now := s.now()
	for d.Step < StepConfirmation {
		if err := d.Next(now); err != nil {
			return nil, err
		}
	}

	q, err := NewQuote(pkg.Price(), d.Travelers, d.Options)
	if err != nil {
		return nil, err
	}
	return &Confirmation{
		BookingNumber: d.BookingNumber,
		Package:       pkg,
		Date:          d.Date,
		Travelers:     d.Travelers,
		PaymentMethod: d.PaymentMethod,
		Quote:         q,
	}, nil
}
