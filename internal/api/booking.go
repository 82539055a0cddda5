package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kmedi-tour/internal/domain/booking"
)

// decodeBooking reads a booking request. The quote endpoint uses the same
// shape and ignores the form fields.
func decodeBooking(r *http.Request) (booking.Request, error) {
	req := booking.Request{Travelers: 1}
	err := decodeObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "packageSlug":
			req.PackageSlug, err = d.Str()
		case "date":
			req.Date, err = d.Str()
		case "travelers":
			req.Travelers, err = d.Int()
		case "options":
			req.Options, err = strArr(d)
		case "paymentMethod":
			var v string
			v, err = d.Str()
			req.PaymentMethod = booking.PaymentMethod(v)
		case "info":
			err = d.Obj(func(d *jx.Decoder, key string) error {
				return decodeInfo(d, key, &req.Info)
			})
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return req, err
	}
	if req.PackageSlug == "" {
		return req, badRequest("packageSlug is required")
	}
	return req, nil
}

func decodeInfo(d *jx.Decoder, key string, info *booking.PersonalInfo) error {
	var dst *string
	switch key {
	case "firstName":
		dst = &info.FirstName
	case "lastName":
		dst = &info.LastName
	case "email":
		dst = &info.Email
	case "phone":
		dst = &info.Phone
	case "nationality":
		dst = &info.Nationality
	case "passportNumber":
		dst = &info.PassportNumber
	case "medicalNotes":
		dst = &info.MedicalNotes
	case "consentTerms":
		v, err := d.Bool()
		info.ConsentTerms = v
		return err
	case "consentMedical":
		v, err := d.Bool()
		info.ConsentMedical = v
		return err
	default:
		return d.Skip()
	}
	v, err := d.Str()
	*dst = v
	return err
}

func (s *Server) quoteBooking(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeBooking(r)
	if err != nil {
		return err
	}
	q, err := s.Bookings.Quote(req.PackageSlug, req.Travelers, req.Options)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, object(func(e *jx.Encoder) { encQuote(e, q) }))
	return nil
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeBooking(r)
	if err != nil {
		return err
	}
	conf, err := s.Bookings.Book(req)
	if err != nil {
		return err
	}
	s.metrics.bookings.Add(r.Context(), 1)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encConfirmation(e, conf) })
	return nil
}
