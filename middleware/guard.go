// Package middleware is the identity gate: it resolves inbound requests to a
// verified identity or rejects them, before handler dispatch. Authenticate is
// a pure function of the request; Guard and RequireRole wrap it in the usual
// func(http.Handler) http.Handler shape.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	shopguard "github.com/calebrossi/shopguard"
	"github.com/calebrossi/shopguard/jwt"
	"github.com/calebrossi/shopguard/transport"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity attached by Guard, if any.
func IdentityFromContext(ctx context.Context) (*shopguard.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*shopguard.Identity)
	return id, ok
}

// WithIdentity attaches an identity to ctx. Exported for handler tests.
func WithIdentity(ctx context.Context, id *shopguard.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// Gate authenticates requests against the engine using the binder's token
// extraction rules.
type Gate struct {
	engine *shopguard.Engine
	binder *transport.Binder
}

// NewGate wires a Gate.
func NewGate(engine *shopguard.Engine, binder *transport.Binder) *Gate {
	return &Gate{engine: engine, binder: binder}
}

// Authenticate resolves r to a verified identity or an error. It reads the
// access token (cookie, then bearer header), verifies it, and loads the
// identity from the user store. No continuation, no side effects: the
// routing layer decides what a failure means.
func (g *Gate) Authenticate(r *http.Request) (*shopguard.Identity, error) {
	token, ok := g.binder.ReadAccess(r)
	if !ok {
		return nil, shopguard.ErrNoToken
	}
	return g.engine.Authenticate(r.Context(), token)
}

// Guard rejects unauthenticated requests with 401 and otherwise attaches the
// identity to the request context for downstream handlers. Store or codec
// breakage maps to 500; the response body never carries internal detail.
func (g *Gate) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Authenticate(r)
		if err != nil {
			status, message := authFailure(err)
			writeMessage(w, status, message)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireRole builds on Guard: the request must authenticate and the
// identity must carry exactly the given role, otherwise 403.
func (g *Gate) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.Guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := IdentityFromContext(r.Context())
			if identity == nil || identity.Role != role {
				writeMessage(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// RequireAdmin is the common admin-only gate.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return g.RequireRole(shopguard.RoleAdmin)(next)
}

// authFailure maps an authentication error to an HTTP status and a
// user-visible message. Expired tokens get their own message so clients know
// to try an explicit refresh instead of logging back in.
func authFailure(err error) (int, string) {
	switch {
	case errors.Is(err, shopguard.ErrNoToken):
		return http.StatusUnauthorized, "no token provided"
	case errors.Is(err, jwt.ErrExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, jwt.ErrMalformed), errors.Is(err, jwt.ErrSignatureInvalid):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, shopguard.ErrUserNotFound):
		return http.StatusUnauthorized, "user not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
