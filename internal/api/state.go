package api

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/kmedi-tour/internal/clientstate"
)

// viewState answers with the caller's persisted aggregate.
func viewState[T any](w http.ResponseWriter, r *http.Request, m *clientstate.Mirror[T], enc func(*jx.Encoder, *T)) error {
	id, err := clientID(r)
	if err != nil {
		return err
	}
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	if err := m.View(r.Context(), id, func(v *T) { enc(e, v) }); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(out *jx.Encoder) { out.Raw(e.Bytes()) })
	return nil
}

// updateState applies fn to the caller's aggregate and answers with the
// result. Nothing is written to w when fn fails.
func updateState[T any](w http.ResponseWriter, r *http.Request, m *clientstate.Mirror[T], fn func(*T) error, enc func(*jx.Encoder, *T)) error {
	id, err := clientID(r)
	if err != nil {
		return err
	}
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	if err := m.Update(r.Context(), id, func(v *T) error {
		if err := fn(v); err != nil {
			return err
		}
		enc(e, v)
		return nil
	}); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(out *jx.Encoder) { out.Raw(e.Bytes()) })
	return nil
}
