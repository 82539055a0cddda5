package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the sliding window limiter.
type RateLimitConfig struct {
	// Max requests per Window. Zero disables limiting.
	Max    int
	Window time.Duration
	// KeyFunc picks the bucket for a request. Defaults to the client IP.
	KeyFunc func(*http.Request) string
}

// bucket counts requests in the current and previous fixed windows; the
// previous one is weighted by how much of it the sliding window still covers.
type bucket struct {
	start time.Time
	curr  float64
	prev  float64
}

type limiter struct {
	max    float64
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	return &limiter{
		max:     float64(cfg.Max),
		window:  cfg.Window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// take consumes one request from key's budget.
func (l *limiter) take(key string) (remaining int, reset time.Time, ok bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, found := l.buckets[key]
	if !found {
		b = &bucket{start: now.Truncate(l.window)}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.start); elapsed >= l.window {
		if elapsed < 2*l.window {
			b.prev = b.curr
		} else {
			b.prev = 0
		}
		b.curr = 0
		b.start = now.Truncate(l.window)
	}

	weight := max(0, 1-now.Sub(b.start).Seconds()/l.window.Seconds())
	used := b.prev*weight + b.curr
	reset = b.start.Add(l.window)
	if used >= l.max {
		return 0, reset, false
	}
	b.curr++
	return max(0, int(l.max-used-1)), reset, true
}

func (l *limiter) evict() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if now.Sub(b.start) >= 2*l.window {
			delete(l.buckets, key)
		}
	}
}

// RateLimit limits requests per key and reports the budget in X-RateLimit-*
// headers. Over the limit it answers 429 with a Retry-After header.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newLimiter(cfg).middleware(cfg.KeyFunc)
}

// RateLimitWithCleanup is RateLimit plus a goroutine that drops idle buckets
// until ctx is done.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	if cfg.Window > 0 {
		go func() {
			ticker := time.NewTicker(2 * cfg.Window)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					l.evict()
				}
			}
		}()
	}
	return l.middleware(cfg.KeyFunc)
}

func (l *limiter) middleware(key func(*http.Request) string) Middleware {
	if key == nil {
		key = clientIP
	}
	limit := strconv.Itoa(int(l.max))
	return func(next http.Handler) http.Handler {
		if l.max <= 0 || l.window <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, reset, ok := l.take(key(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !ok {
				wait := max(0, reset.Sub(l.now()))
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
