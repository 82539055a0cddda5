// Package deal computes time left on limited-time offers.
package deal

import (
	"context"
	"time"
)

// Countdown is the time left until a deal ends, split for display.
type Countdown struct {
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

// Remaining returns the countdown from now to end. Hours are not wrapped at
// 24, so a deal two days out reads 48h.
func Remaining(end, now time.Time) Countdown {
	left := end.Sub(now)
	if left <= 0 {
		return Countdown{Expired: true}
	}
	return Countdown{
		Hours:   int(left / time.Hour),
		Minutes: int(left % time.Hour / time.Minute),
		Seconds: int(left % time.Minute / time.Second),
	}
}

// Watch calls fn with the countdown right away and then on every tick until
// the deal expires, fn fails or ctx is done. Time is read from now. It returns
// nil after delivering the expired countdown.
func Watch(ctx context.Context, end time.Time, every time.Duration, now func() time.Time, fn func(Countdown) error) error {
	c := Remaining(end, now())
	if err := fn(c); err != nil || c.Expired {
		return err
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c := Remaining(end, now())
			if err := fn(c); err != nil || c.Expired {
				return err
			}
		}
	}
}
