package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/luminacrm/lumina/internal/pkg/jwt"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// Authenticate rejects requests without a valid bearer token: 401 when
// the header is missing, 403 when the token fails verification. Claims
// land in the request context for handlers that want the acting user.
func Authenticate(jwtSvc *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token := ""
			if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				token = parts[1]
			}
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			claims, err := jwtSvc.ValidateToken(token)
			if err != nil {
				writeError(w, http.StatusForbidden, "Invalid or expired token.")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the authenticated user's claims, if any.
func ClaimsFrom(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*jwt.Claims)
	return claims, ok
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
