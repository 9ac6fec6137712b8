package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

type claimsContextKey struct{}

// AuthMiddleware validates the bearer credential issued by the identity
// provider and puts its claims on the request context. The order engine never
// re-validates the credential; it trusts these claims.
type AuthMiddleware struct {
	logger *slog.Logger
	secret []byte
}

func NewAuthMiddleware(logger *slog.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{logger: logger, secret: []byte(secret)}
}

func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "Missing or malformed authorization header")
			return
		}

		claims := &entities.InvestorClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
			func(*jwt.Token) (any, error) { return a.secret, nil },
			jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			a.logger.Debug("rejected credential", "error", err)
			writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a handler on the credential's role claim.
func (a *AuthMiddleware) RequireRole(roles ...entities.InvestorRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Missing credential")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

// ClaimsFromContext returns the validated investor claims, if any.
func ClaimsFromContext(ctx context.Context) (*entities.InvestorClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*entities.InvestorClaims)
	return claims, ok
}
