package api

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	cartAdds    metric.Int64Counter
	coupons     metric.Int64Counter
	tripSubmits metric.Int64Counter
	bookings    metric.Int64Counter
	chatReplies metric.Int64Counter
}

func newMetrics(m metric.Meter) (*metrics, error) {
	var (
		out metrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&out.cartAdds, "kmedi.cart.items.added", "Packages added to carts"},
		{&out.coupons, "kmedi.cart.coupons", "Coupon applications by result"},
		{&out.tripSubmits, "kmedi.trip.submits", "Trip builder submissions by result"},
		{&out.bookings, "kmedi.bookings", "Confirmed bookings"},
		{&out.chatReplies, "kmedi.assistant.replies", "Assistant replies by kind"},
	}
	for _, c := range counters {
		*c.dst, err = m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, errors.Wrapf(err, "counter %s", c.name)
		}
	}
	return &out, nil
}
