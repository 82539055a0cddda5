package deal

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want Countdown
	}{
		{name: "past", end: now.Add(-time.Second), want: Countdown{Expired: true}},
		{name: "exactly now", end: now, want: Countdown{Expired: true}},
		{name: "sub second", end: now.Add(500 * time.Millisecond), want: Countdown{}},
		{name: "mixed", end: now.Add(2*time.Hour + 5*time.Minute + 9*time.Second), want: Countdown{Hours: 2, Minutes: 5, Seconds: 9}},
		{name: "days in hours", end: now.Add(49 * time.Hour), want: Countdown{Hours: 49}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Remaining(tt.end, now))
		})
	}
}

func TestWatch_StopsOnExpiry(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	var ticks atomic.Int64
	now := func() time.Time { return start.Add(time.Duration(ticks.Load()) * time.Second) }

	var got []Countdown
	err := Watch(context.Background(), start.Add(2*time.Second), time.Millisecond, now, func(c Countdown) error {
		got = append(got, c)
		ticks.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []Countdown{{Seconds: 2}, {Seconds: 1}, {Expired: true}}, got)
}

func TestWatch_AlreadyExpired(t *testing.T) {
	calls := 0
	err := Watch(context.Background(), time.Now().Add(-time.Minute), time.Hour, time.Now, func(c Countdown) error {
		calls++
		assert.True(t, c.Expired)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Watch(ctx, time.Now().Add(time.Hour), time.Hour, time.Now, func(Countdown) error {
		calls++
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWatch_StopsOnCallbackError(t *testing.T) {
	errGone := errors.New("client gone")
	calls := 0
	err := Watch(context.Background(), time.Now().Add(time.Hour), time.Millisecond, time.Now, func(Countdown) error {
		calls++
		if calls == 2 {
			return errGone
		}
		return nil
	})
	require.ErrorIs(t, err, errGone)
	assert.Equal(t, 2, calls)
}
