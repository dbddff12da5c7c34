package transport

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type callerKey struct{}

// CallerResolver resolves a caller name from a bearer token.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (string, error)
}

// StaticToken accepts a single shared token.
type StaticToken struct {
	Token  string
	Caller string
}

// ResolveCaller implements CallerResolver.
func (s StaticToken) ResolveCaller(_ context.Context, token string) (string, error) {
	if s.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		return "", ErrUnauthorized
	}
	if s.Caller == "" {
		return "operator", nil
	}
	return s.Caller, nil
}

// CallerFromContext returns the authenticated caller, if present.
func CallerFromContext(ctx context.Context) (string, bool) {
	caller, ok := ctx.Value(callerKey{}).(string)
	return caller, ok
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver CallerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
				return
			}

			caller, err := resolver.ResolveCaller(r.Context(), token)
			if err != nil || caller == "" {
				writeMessage(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), callerKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
