package pkgrouter

import (
	"context"
	"net/http"
)

type routeContextKey struct{}

// withRoute stores the registered path pattern (e.g. /datasets/:id) so logs
// group requests by route rather than by concrete path.
func withRoute(pattern string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), routeContextKey{}, pattern)))
	})
}

func routeFromContext(ctx context.Context) string {
	pattern, _ := ctx.Value(routeContextKey{}).(string)
	return pattern
}
