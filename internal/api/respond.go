package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kmedi-tour/internal/catalog"
	"github.com/xenking/kmedi-tour/internal/domain/account"
	"github.com/xenking/kmedi-tour/internal/domain/booking"
	"github.com/xenking/kmedi-tour/internal/domain/cart"
	"github.com/xenking/kmedi-tour/internal/domain/coupon"
	"github.com/xenking/kmedi-tour/internal/domain/trip"
)

const maxBodySize = 1 << 20

// requestError is a client mistake with a fixed status.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{status: http.StatusBadRequest, msg: msg}
}

func conflict(msg string) error {
	return &requestError{status: http.StatusConflict, msg: msg}
}

func unprocessable(msg string) error {
	return &requestError{status: http.StatusUnprocessableEntity, msg: msg}
}

// statusOf maps an error to its HTTP status and public message.
func statusOf(err error) (int, string) {
	var reqErr *requestError
	var valErr *booking.ValidationError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status, reqErr.msg
	case errors.As(err, &valErr):
		return http.StatusUnprocessableEntity, valErr.Error()
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, trip.ErrNotReady):
		return http.StatusConflict, "trip is not ready to submit"
	case errors.Is(err, trip.ErrUnknownTripType), errors.Is(err, account.ErrUnknownProvider):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, account.ErrNotLoggedIn):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, coupon.ErrInvalidCoupon):
		return http.StatusUnprocessableEntity, "invalid coupon code"
	case errors.Is(err, coupon.ErrCouponExpired):
		return http.StatusUnprocessableEntity, "coupon expired"
	case errors.Is(err, coupon.ErrMinOrderNotMet):
		return http.StatusUnprocessableEntity, "minimum order amount not met"
	case errors.Is(err, booking.ErrUnknownOption):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		// The visitor went away; nobody reads the answer.
		return
	}

	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	}

	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		num(e, "code", status)
		str(e, "message", msg)
		var valErr *booking.ValidationError
		if errors.As(err, &valErr) {
			e.FieldStart("fields")
			e.ArrStart()
			for _, f := range valErr.Fields {
				e.ObjStart()
				str(e, "field", f.Field)
				str(e, "message", f.Msg)
				e.ObjEnd()
			}
			e.ArrEnd()
		}
		e.ObjEnd()
	})
}

func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	fn(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// decodeObject reads the request body as one JSON object and hands every
// field to fn. An empty body is an empty object.
func decodeObject(r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if len(body) > maxBodySize {
		return &requestError{status: http.StatusRequestEntityTooLarge, msg: "request body too large"}
	}
	if len(body) == 0 {
		return nil
	}
	if err := jx.DecodeBytes(body).Obj(fn); err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			return err
		}
		return badRequest("malformed JSON: " + err.Error())
	}
	return nil
}

// optStr decodes a string or null into a pointer.
func optStr(d *jx.Decoder) (*string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	v, err := d.Str()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func strArr(d *jx.Decoder) ([]string, error) {
	var out []string
	err := d.Arr(func(d *jx.Decoder) error {
		v, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}
