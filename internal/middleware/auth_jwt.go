package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"foodshare/internal/domain"
	"foodshare/internal/service"
)

// Authenticator verifies a bearer token. *service.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Principal, error)
}

type principalKey struct{}

// AuthJWT rejects requests without a valid, unrevoked bearer token and stores
// the verified principal in the request context.
func AuthJWT(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing authorization")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid authorization")
				return
			}
			principal, err := auth.Authenticate(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
					return
				}
				writeError(w, http.StatusInternalServerError, "internal", "failed to verify token")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// PrincipalFromContext returns the authenticated caller, or nil.
func PrincipalFromContext(ctx context.Context) *service.Principal {
	if v, ok := ctx.Value(principalKey{}).(*service.Principal); ok {
		return v
	}
	return nil
}

func ContextWithPrincipal(ctx context.Context, p *service.Principal) context.Context {
	if p == nil || strings.TrimSpace(p.Email) == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}
