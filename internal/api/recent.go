package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kmedi-tour/internal/domain/recent"
)

func (s *Server) recentView(e *jx.Encoder, l *recent.List) {
	e.ObjStart()
	encRecent(e, l, s.now())
	e.ObjEnd()
}

func (s *Server) getRecent(w http.ResponseWriter, r *http.Request) error {
	return viewState(w, r, s.Recent, s.recentView)
}

func (s *Server) clearRecent(w http.ResponseWriter, r *http.Request) error {
	return updateState(w, r, s.Recent, func(l *recent.List) error {
		l.Clear()
		return nil
	}, s.recentView)
}

func (s *Server) addRecent(w http.ResponseWriter, r *http.Request) error {
	pkg, err := s.Catalog.PackageByID(r.PathValue("packageId"))
	if err != nil {
		return err
	}
	return updateState(w, r, s.Recent, func(l *recent.List) error {
		l.Add(pkg, s.now())
		return nil
	}, s.recentView)
}
