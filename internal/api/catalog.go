package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kmedi-tour/internal/catalog"
)

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, object(func(e *jx.Encoder) {
		list(e, "categories", s.Catalog.Categories(), encCategory)
	}))
	return nil
}

func (s *Server) listPackages(w http.ResponseWriter, r *http.Request) error {
	pkgs := s.Catalog.Packages(r.URL.Query().Get("category"))
	writeJSON(w, http.StatusOK, object(func(e *jx.Encoder) {
		list(e, "packages", pkgs, encPackage)
		num(e, "total", len(pkgs))
	}))
	return nil
}

func (s *Server) getPackage(w http.ResponseWriter, r *http.Request) error {
	pkg, err := s.Catalog.PackageBySlug(r.PathValue("slug"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encPackage(e, pkg) })
	return nil
}

func (s *Server) listHospitals(w http.ResponseWriter, r *http.Request) error {
	category := r.URL.Query().Get("category")
	writeJSON(w, http.StatusOK, object(func(e *jx.Encoder) {
		list(e, "hospitals", s.Catalog.HospitalsForCategory(category), encHospital)
	}))
	return nil
}

func (s *Server) listAccommodations(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, object(func(e *jx.Encoder) {
		list(e, "accommodations", s.Catalog.Accommodations(), encAccommodation)
	}))
	return nil
}

func (s *Server) listRestaurants(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, object(func(e *jx.Encoder) {
		list(e, "restaurants", s.Catalog.Restaurants(), encRestaurant)
	}))
	return nil
}

func (s *Server) listAttractions(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, object(func(e *jx.Encoder) {
		list(e, "attractions", s.Catalog.Attractions(), encAttraction)
	}))
	return nil
}

func (s *Server) listEvents(w http.ResponseWriter, _ *http.Request) error {
	now := s.now()
	writeJSON(w, http.StatusOK, object(func(e *jx.Encoder) {
		list(e, "events", s.Catalog.ActiveEvents(now), func(e *jx.Encoder, ev catalog.Event) {
			encEvent(e, ev, now)
		})
	}))
	return nil
}
