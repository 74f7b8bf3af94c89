package http

import (
	"context"
	"net/http"

	"github.com/DanielAnoka/EMS-sub000/internal/cart"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityMiddleware resolves the request identity. The console performs
// no identity resolution of its own: the id comes from the auth layer in
// front of us via the X-User-ID header, and requests without one run as
// the guest identity.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := r.Header.Get("X-User-ID")
		if identity == "" {
			identity = cart.GuestIdentity
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(ctx context.Context) string {
	if identity, ok := ctx.Value(identityKey).(string); ok {
		return identity
	}
	return cart.GuestIdentity
}
