package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kmedi-tour/internal/domain/wishlist"
)

func wishlistView(e *jx.Encoder, wl *wishlist.Wishlist) {
	e.ObjStart()
	list(e, "items", wl.Items, encWishlistItem)
	num(e, "count", wl.Count())
	e.ObjEnd()
}

func (s *Server) getWishlist(w http.ResponseWriter, r *http.Request) error {
	return viewState(w, r, s.Wishlists, wishlistView)
}

func (s *Server) clearWishlist(w http.ResponseWriter, r *http.Request) error {
	return updateState(w, r, s.Wishlists, func(wl *wishlist.Wishlist) error {
		wl.Clear()
		return nil
	}, wishlistView)
}

func (s *Server) toggleWishlist(w http.ResponseWriter, r *http.Request) error {
	pkg, err := s.Catalog.PackageByID(r.PathValue("packageId"))
	if err != nil {
		return err
	}
	var saved bool
	return updateState(w, r, s.Wishlists, func(wl *wishlist.Wishlist) error {
		saved = wl.Toggle(pkg, s.now())
		return nil
	}, func(e *jx.Encoder, wl *wishlist.Wishlist) {
		e.ObjStart()
		boolean(e, "saved", saved)
		list(e, "items", wl.Items, encWishlistItem)
		num(e, "count", wl.Count())
		e.ObjEnd()
	})
}
