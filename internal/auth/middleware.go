package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const ViewerKey contextKey = "viewer"

// AuthMiddleware rejects requests without a valid bearer token.
func (s *Service) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
			return
		}

		viewer, err := s.ValidateToken(parts[1])
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		ctx := context.WithValue(r.Context(), ViewerKey, viewer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ViewerFromContext(ctx context.Context) string {
	viewer, _ := ctx.Value(ViewerKey).(string)
	return viewer
}
