package http

import (
	"context"
	"net/http"
	"strings"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/security"
)

type contextKey string

const principalKey contextKey = "principal"

// authMiddleware validates the bearer token and attaches the principal.
func authMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, nil, "missing bearer token")
				return
			}
			principal, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, nil, err.Error())
				return
			}
			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func principalFrom(r *http.Request) (*security.Principal, error) {
	p, ok := r.Context().Value(principalKey).(*security.Principal)
	if !ok || p == nil {
		return nil, apperror.Forbidden("no authenticated principal")
	}
	return p, nil
}

// requireRole rejects principals whose role does not match.
func requireRole(r *http.Request, roles ...domain.Role) (*security.Principal, error) {
	p, err := principalFrom(r)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if p.Role == role {
			return p, nil
		}
	}
	return nil, apperror.Forbidden("insufficient role for this operation")
}
