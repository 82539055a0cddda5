package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/kmedi-tour/internal/domain/trip"
)

// withTrip runs fn on the caller's wizard and answers with the resulting
// trip view. The view is encoded while the wizard is still held.
func (s *Server) withTrip(w http.ResponseWriter, r *http.Request, fn func(wz *trip.Wizard) error) error {
	id, err := clientID(r)
	if err != nil {
		return err
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	if err := s.Trips.Do(id, func(wz *trip.Wizard) error {
		if err := fn(wz); err != nil {
			return err
		}
		encTrip(e, wz)
		return nil
	}); err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, func(out *jx.Encoder) { out.Raw(e.Bytes()) })
	return nil
}

// decodeID reads {"id": "..."}; null or "" clears the selection.
func decodeID(r *http.Request) (string, error) {
	var id string
	err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "id" {
			return d.Skip()
		}
		v, err := optStr(d)
		if err != nil || v == nil {
			return err
		}
		id = *v
		return nil
	})
	return id, err
}

func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) error {
	return s.withTrip(w, r, func(*trip.Wizard) error { return nil })
}

func (s *Server) setTripType(w http.ResponseWriter, r *http.Request) error {
	var raw string
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "type" {
			return d.Skip()
		}
		v, err := d.Str()
		raw = v
		return err
	}); err != nil {
		return err
	}
	t, err := trip.ParseTripType(raw)
	if err != nil {
		return err
	}
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		wz.SetTripType(t)
		return nil
	})
}

func (s *Server) setTripCategory(w http.ResponseWriter, r *http.Request) error {
	id, err := decodeID(r)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := s.Catalog.Category(id); err != nil {
			return err
		}
	}
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		wz.SetSelectedCategory(id)
		return nil
	})
}

func (s *Server) setTripHospital(w http.ResponseWriter, r *http.Request) error {
	id, err := decodeID(r)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := s.Catalog.Hospital(id); err != nil {
			return err
		}
	}
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		wz.SetSelectedHospital(id)
		return nil
	})
}

func (s *Server) setTripAccommodation(w http.ResponseWriter, r *http.Request) error {
	id, err := decodeID(r)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := s.Catalog.Accommodation(id); err != nil {
			return err
		}
	}
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		wz.SetSelectedAccommodation(id)
		return nil
	})
}

func (s *Server) toggleTripRestaurant(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")
	if _, err := s.Catalog.Restaurant(id); err != nil {
		return err
	}
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		wz.ToggleRestaurant(id)
		return nil
	})
}

func (s *Server) toggleTripAttraction(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")
	if _, err := s.Catalog.Attraction(id); err != nil {
		return err
	}
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		wz.ToggleAttraction(id)
		return nil
	})
}

func (s *Server) updateTripContact(w http.ResponseWriter, r *http.Request) error {
	var u trip.ContactUpdate
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		var dst **string
		switch key {
		case "name":
			dst = &u.Name
		case "email":
			dst = &u.Email
		case "phone":
			dst = &u.Phone
		case "country":
			dst = &u.Country
		case "preferredDate":
			dst = &u.PreferredDate
		case "message":
			dst = &u.Message
		default:
			return d.Skip()
		}
		v, err := optStr(d)
		*dst = v
		return err
	}); err != nil {
		return err
	}
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		wz.SetContactInfo(u)
		return nil
	})
}

func (s *Server) nextTripStep(w http.ResponseWriter, r *http.Request) error {
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		if !wz.CanProceed() {
			return conflict("current step is incomplete")
		}
		wz.NextStep()
		return nil
	})
}

func (s *Server) prevTripStep(w http.ResponseWriter, r *http.Request) error {
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		wz.PrevStep()
		return nil
	})
}

// setTripStep only moves back to a completed step; forward moves go through
// next so the validator runs.
func (s *Server) setTripStep(w http.ResponseWriter, r *http.Request) error {
	index := -1
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "index" {
			return d.Skip()
		}
		v, err := d.Int()
		index = v
		return err
	}); err != nil {
		return err
	}
	if index < 0 {
		return badRequest("index must be a non-negative integer")
	}
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		if index == wz.CurrentIndex() {
			return nil
		}
		if !wz.JumpBack(index) {
			return conflict("can only return to a completed step")
		}
		return nil
	})
}

func (s *Server) submitTrip(w http.ResponseWriter, r *http.Request) error {
	err := s.withTrip(w, r, func(wz *trip.Wizard) error {
		return wz.SubmitChecked()
	})
	result := "ok"
	if errors.Is(err, trip.ErrNotReady) {
		result = "not_ready"
	}
	if err == nil || result != "ok" {
		s.metrics.tripSubmits.Add(r.Context(), 1, metric.WithAttributes(attribute.String("result", result)))
	}
	return err
}

func (s *Server) resetTrip(w http.ResponseWriter, r *http.Request) error {
	return s.withTrip(w, r, func(wz *trip.Wizard) error {
		wz.Reset()
		return nil
	})
}
