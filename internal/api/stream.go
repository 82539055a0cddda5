package api

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kmedi-tour/internal/domain/deal"
)

// countdownInterval is how often an event countdown stream is updated.
const countdownInterval = time.Second

// streamEventCountdown pushes the time left on an event as server-sent
// events, one "countdown" frame per second, until the event ends or the
// visitor leaves.
func (s *Server) streamEventCountdown(w http.ResponseWriter, r *http.Request) error {
	ev, err := s.Catalog.Event(r.PathValue("id"))
	if err != nil {
		return err
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	ctx := r.Context()
	err = deal.Watch(ctx, ev.EndDate.AddDate(0, 0, 1), countdownInterval, s.now, func(c deal.Countdown) error {
		// Each frame gets its own deadline; the server-wide write timeout
		// would cut the stream otherwise.
		if err := rc.SetWriteDeadline(time.Now().Add(2 * countdownInterval)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return errors.Wrap(err, "set write deadline")
		}

		e.Reset()
		object(func(e *jx.Encoder) {
			str(e, "id", ev.ID)
			encCountdown(e, c)
		})(e)

		if _, err := w.Write([]byte("event: countdown\ndata: ")); err != nil {
			return err
		}
		if _, err := w.Write(append(e.Bytes(), '\n', '\n')); err != nil {
			return err
		}
		return rc.Flush()
	})
	if err != nil && ctx.Err() == nil {
		// Headers are out; the stream just ends.
		zctx.From(ctx).Warn("Countdown stream stopped", zap.String("event", ev.ID), zap.Error(err))
	}
	return nil
}
