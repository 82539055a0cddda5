// Package api exposes the storefront core over HTTP. Requests and responses
// are JSON, encoded with jx; every client is identified by X-Client-ID.
package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/kmedi-tour/internal/catalog"
	"github.com/xenking/kmedi-tour/internal/clientstate"
	"github.com/xenking/kmedi-tour/internal/domain/account"
	"github.com/xenking/kmedi-tour/internal/domain/assistant"
	"github.com/xenking/kmedi-tour/internal/domain/booking"
	"github.com/xenking/kmedi-tour/internal/domain/cart"
	"github.com/xenking/kmedi-tour/internal/domain/recent"
	"github.com/xenking/kmedi-tour/internal/domain/trip"
	"github.com/xenking/kmedi-tour/internal/domain/wishlist"
	"github.com/xenking/kmedi-tour/pkg/httpmiddleware"
)

const instrumentationName = "github.com/xenking/kmedi-tour/internal/api"

// Deps are the services behind the API.
type Deps struct {
	Catalog   *catalog.Catalog
	Trips     *trip.Registry
	Carts     *clientstate.Mirror[cart.Cart]
	CartSvc   *cart.Service
	Wishlists *clientstate.Mirror[wishlist.Wishlist]
	Recent    *clientstate.Mirror[recent.List]
	Accounts  *clientstate.Mirror[account.Session]
	Assistant *assistant.Sessions
	Bookings  *booking.Service

	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Server holds the HTTP handlers.
type Server struct {
	Deps

	now     func() time.Time
	metrics *metrics
	tracer  trace.Tracer
}

// NewServer validates deps and creates the instruments.
func NewServer(d Deps) (*Server, error) {
	if d.Catalog == nil || d.Trips == nil || d.Carts == nil || d.CartSvc == nil ||
		d.Wishlists == nil || d.Recent == nil || d.Accounts == nil ||
		d.Assistant == nil || d.Bookings == nil {
		return nil, errors.New("api: missing dependency")
	}
	if d.MeterProvider == nil || d.TracerProvider == nil {
		return nil, errors.New("api: missing telemetry providers")
	}

	m, err := newMetrics(d.MeterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}
	return &Server{
		Deps:    d,
		now:     time.Now,
		metrics: m,
		tracer:  d.TracerProvider.Tracer(instrumentationName),
	}, nil
}

// handlerFunc is an HTTP handler that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) handle(mux *http.ServeMux, pattern string, h handlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.fail(w, r, err)
		}
	})
}

// Register mounts every API route on mux.
func (s *Server) Register(mux *http.ServeMux) {
	s.handle(mux, "GET /api/catalog/categories", s.listCategories)
	s.handle(mux, "GET /api/catalog/packages", s.listPackages)
	s.handle(mux, "GET /api/catalog/packages/{slug}", s.getPackage)
	s.handle(mux, "GET /api/catalog/hospitals", s.listHospitals)
	s.handle(mux, "GET /api/catalog/accommodations", s.listAccommodations)
	s.handle(mux, "GET /api/catalog/restaurants", s.listRestaurants)
	s.handle(mux, "GET /api/catalog/attractions", s.listAttractions)
	s.handle(mux, "GET /api/catalog/events", s.listEvents)
	s.handle(mux, "GET /api/catalog/events/{id}/countdown", s.streamEventCountdown)

	s.handle(mux, "GET /api/trip", s.getTrip)
	s.handle(mux, "POST /api/trip/type", s.setTripType)
	s.handle(mux, "POST /api/trip/category", s.setTripCategory)
	s.handle(mux, "POST /api/trip/hospital", s.setTripHospital)
	s.handle(mux, "POST /api/trip/accommodation", s.setTripAccommodation)
	s.handle(mux, "POST /api/trip/restaurants/{id}/toggle", s.toggleTripRestaurant)
	s.handle(mux, "POST /api/trip/attractions/{id}/toggle", s.toggleTripAttraction)
	s.handle(mux, "PATCH /api/trip/contact", s.updateTripContact)
	s.handle(mux, "POST /api/trip/next", s.nextTripStep)
	s.handle(mux, "POST /api/trip/prev", s.prevTripStep)
	s.handle(mux, "POST /api/trip/step", s.setTripStep)
	s.handle(mux, "POST /api/trip/submit", s.submitTrip)
	s.handle(mux, "POST /api/trip/reset", s.resetTrip)

	s.handle(mux, "GET /api/cart", s.getCart)
	s.handle(mux, "DELETE /api/cart", s.clearCart)
	s.handle(mux, "POST /api/cart/items", s.addCartItem)
	s.handle(mux, "PATCH /api/cart/items/{id}", s.updateCartItem)
	s.handle(mux, "DELETE /api/cart/items/{id}", s.removeCartItem)
	s.handle(mux, "POST /api/cart/coupon", s.applyCoupon)
	s.handle(mux, "DELETE /api/cart/coupon", s.removeCoupon)

	s.handle(mux, "GET /api/wishlist", s.getWishlist)
	s.handle(mux, "DELETE /api/wishlist", s.clearWishlist)
	s.handle(mux, "POST /api/wishlist/{packageId}/toggle", s.toggleWishlist)

	s.handle(mux, "GET /api/recent", s.getRecent)
	s.handle(mux, "DELETE /api/recent", s.clearRecent)
	s.handle(mux, "POST /api/recent/{packageId}", s.addRecent)

	s.handle(mux, "GET /api/account", s.getAccount)
	s.handle(mux, "PATCH /api/account", s.updateAccount)
	s.handle(mux, "POST /api/account/login/demo", s.loginDemo)
	s.handle(mux, "POST /api/account/login/{provider}", s.loginProvider)
	s.handle(mux, "POST /api/account/logout", s.logout)

	s.handle(mux, "GET /api/assistant", s.getAssistant)
	s.handle(mux, "POST /api/assistant/messages", s.sendAssistantMessage)
	s.handle(mux, "POST /api/assistant/categories/{id}", s.selectAssistantCategory)
	s.handle(mux, "POST /api/assistant/reset", s.resetAssistant)
	s.handle(mux, "POST /api/assistant/estimate", s.estimate)

	s.handle(mux, "POST /api/bookings/quote", s.quoteBooking)
	s.handle(mux, "POST /api/bookings", s.createBooking)
}

// clientID returns the visitor id set by httpmiddleware.ClientID.
func clientID(r *http.Request) (string, error) {
	id := httpmiddleware.ClientIDFromContext(r.Context())
	if id == "" {
		return "", badRequest("missing " + httpmiddleware.ClientIDHeader)
	}
	return id, nil
}
