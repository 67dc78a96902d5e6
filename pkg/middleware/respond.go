package middleware

import (
	"context"
	"net/http"

	httputil "printhub/pkg/http"
)

func reject(w http.ResponseWriter, status int, code, message string) {
	_ = httputil.WriteJSON(w, status, httputil.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

const streamRouteKey contextKey = "stream_route"

// StreamRoutes marks GET requests on the given paths as event streams. Only
// marked requests may carry the access token in the query string, and they
// skip the request timeout and idempotency replay.
func StreamRoutes(paths ...string) func(http.Handler) http.Handler {
	routes := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		routes[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := routes[r.URL.Path]; ok && r.Method == http.MethodGet {
				r = r.WithContext(context.WithValue(r.Context(), streamRouteKey, true))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isEventStream(r *http.Request) bool {
	marked, _ := r.Context().Value(streamRouteKey).(bool)
	return marked
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
