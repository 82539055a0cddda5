package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/kmedi-tour/internal/domain/cart"
	"github.com/xenking/kmedi-tour/internal/domain/coupon"
)

func cartView(e *jx.Encoder, c *cart.Cart) {
	e.ObjStart()
	encCart(e, c)
	e.ObjEnd()
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) error {
	return viewState(w, r, s.Carts, cartView)
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) error {
	return updateState(w, r, s.Carts, func(c *cart.Cart) error {
		c.Clear()
		return nil
	}, cartView)
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) error {
	var packageID string
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "packageId" {
			return d.Skip()
		}
		v, err := d.Str()
		packageID = v
		return err
	}); err != nil {
		return err
	}
	if packageID == "" {
		return badRequest("packageId is required")
	}

	err := updateState(w, r, s.Carts, func(c *cart.Cart) error {
		_, err := s.CartSvc.AddPackage(c, packageID)
		return err
	}, cartView)
	if err == nil {
		s.metrics.cartAdds.Add(r.Context(), 1)
	}
	return err
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) error {
	qty, set := 0, false
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		v, err := d.Int()
		qty, set = v, true
		return err
	}); err != nil {
		return err
	}
	if !set {
		return badRequest("quantity is required")
	}

	lineID := r.PathValue("id")
	return updateState(w, r, s.Carts, func(c *cart.Cart) error {
		return c.UpdateQuantity(lineID, qty)
	}, cartView)
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) error {
	lineID := r.PathValue("id")
	return updateState(w, r, s.Carts, func(c *cart.Cart) error {
		c.RemoveItem(lineID)
		return nil
	}, cartView)
}

func (s *Server) applyCoupon(w http.ResponseWriter, r *http.Request) error {
	var code string
	if err := decodeObject(r, func(d *jx.Decoder, key string) error {
		if key != "code" {
			return d.Skip()
		}
		v, err := d.Str()
		code = v
		return err
	}); err != nil {
		return err
	}
	code = coupon.Normalize(code)
	if code == "" {
		return badRequest("code is required")
	}

	ctx, span := s.tracer.Start(r.Context(), "cart.ApplyCoupon",
		trace.WithAttributes(attribute.String("coupon.code", code)),
	)
	defer span.End()

	err := updateState(w, r.WithContext(ctx), s.Carts, func(c *cart.Cart) error {
		_, err := s.CartSvc.ApplyCoupon(ctx, c, code)
		return err
	}, cartView)

	result := couponResult(err)
	span.SetAttributes(attribute.String("coupon.result", result))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	s.metrics.coupons.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	return err
}

func couponResult(err error) string {
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, coupon.ErrInvalidCoupon):
		return "invalid"
	case errors.Is(err, coupon.ErrCouponExpired):
		return "expired"
	case errors.Is(err, coupon.ErrMinOrderNotMet):
		return "min_order"
	default:
		return "error"
	}
}

func (s *Server) removeCoupon(w http.ResponseWriter, r *http.Request) error {
	return updateState(w, r, s.Carts, func(c *cart.Cart) error {
		c.RemoveCoupon()
		return nil
	}, cartView)
}
