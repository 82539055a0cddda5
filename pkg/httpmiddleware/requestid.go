package httpmiddleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type (
	requestIDKey struct{}
	clientIDKey  struct{}
)

// Header names.
const (
	RequestIDHeader = "X-Request-ID"
	ClientIDHeader  = "X-Client-ID"
)

// RequestIDFromContext returns the request id, or "" outside RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ClientIDFromContext returns the client id, or "" outside ClientID.
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}

// WithClientID returns a context carrying the client id.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// RequestID reuses a well-formed incoming X-Request-ID or generates one, and
// echoes it on the response.
func RequestID() Middleware {
	return idMiddleware(RequestIDHeader, func(ctx context.Context, id string) context.Context {
		return context.WithValue(ctx, requestIDKey{}, id)
	})
}

// ClientID identifies the storefront visitor. A browser without an id gets a
// fresh one on the response and is expected to send it back.
func ClientID() Middleware {
	return idMiddleware(ClientIDHeader, WithClientID)
}

func idMiddleware(header string, store func(context.Context, string) context.Context) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(header)
			if !validID(id) {
				id = uuid.NewString()
			}
			w.Header().Set(header, id)
			next.ServeHTTP(w, r.WithContext(store(r.Context(), id)))
		})
	}
}

// validID accepts 1..128 bytes of printable ASCII.
func validID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for i := range len(id) {
		if id[i] < 0x20 || id[i] > 0x7E {
			return false
		}
	}
	return true
}
