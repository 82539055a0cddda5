package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when more than threshold goroutines are running.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}

// Pinger is a backend with a connectivity check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck fails when p cannot be reached.
func PingCheck(p Pinger) CheckFunc {
	return p.Ping
}

// SizeCheck fails when size reports more than limit entries, e.g. in-memory
// wizard sessions that the sweeper fails to keep in check.
func SizeCheck(what string, size func() int, limit int) CheckFunc {
	return func(context.Context) error {
		if n := size(); n > limit {
			return errors.Errorf("%s count %d exceeds limit %d", what, n, limit)
		}
		return nil
	}
}
