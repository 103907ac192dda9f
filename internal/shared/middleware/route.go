package middleware

import (
	"context"
	"net/http"
)

type routeKey struct{}

// Router serves mux and reports the pattern that matched to Tracing.
// Middleware copies the request on the way in, so the pattern ServeMux
// records on its own request is not visible further out without this.
func Router(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if slot, ok := r.Context().Value(routeKey{}).(*string); ok {
			*slot = r.Pattern
		}
	})
}

// withRouteSlot returns ctx carrying a slot Router fills in, reusing one
// that is already there.
func withRouteSlot(ctx context.Context) (context.Context, *string) {
	if slot, ok := ctx.Value(routeKey{}).(*string); ok {
		return ctx, slot
	}
	slot := new(string)
	return context.WithValue(ctx, routeKey{}, slot), slot
}

func routeName(slot *string) string {
	if *slot != "" {
		return *slot
	}
	return "unmatched"
}
