package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MikeSquared-Agency/voyager/internal/store"
)

type ctxKey int

const (
	profileKey ctxKey = iota
	tokenKey
)

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// requireSession resolves the bearer token to a profile and rejects the
// request with 401 when it does not resolve.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		profile, err := s.accounts.CurrentUser(r.Context(), token)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		if err != nil {
			s.logger.Error("session lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "session lookup failed")
			return
		}
		ctx := context.WithValue(r.Context(), profileKey, profile)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := profileFrom(r.Context())
		if p == nil || !p.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func profileFrom(ctx context.Context) *store.Profile {
	p, _ := ctx.Value(profileKey).(*store.Profile)
	return p
}
