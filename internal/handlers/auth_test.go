package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/goldvault/investor-dashboard/backend/internal/entities"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims entities.InvestorClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func investorClaims(subject string) entities.InvestorClaims {
	return entities.InvestorClaims{
		Email: subject + "@example.com",
		Role:  entities.RoleInvestor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthMiddleware(t *testing.T) {
	auth := NewAuthMiddleware(slog.Default(), testSecret)

	var seen *entities.InvestorClaims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := auth.Middleware(next)

	do := func(authorization string) *httptest.ResponseRecorder {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		return recorder
	}

	t.Run("missing header", func(t *testing.T) {
		recorder := do("")
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		require.Nil(t, seen)
	})

	t.Run("malformed header", func(t *testing.T) {
		recorder := do("Basic dXNlcjpwYXNz")
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "some-other-secret", investorClaims("investor-1"))
		recorder := do("Bearer " + token)
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := investorClaims("investor-1")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		recorder := do("Bearer " + signToken(t, testSecret, claims))
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("unexpected signing algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, investorClaims("investor-1")).
			SignedString([]byte(testSecret))
		require.NoError(t, err)
		recorder := do("Bearer " + token)
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("valid token puts claims on the context", func(t *testing.T) {
		recorder := do("Bearer " + signToken(t, testSecret, investorClaims("investor-1")))
		require.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, seen)
		require.Equal(t, "investor-1", seen.InvestorID())
		require.Equal(t, entities.RoleInvestor, seen.Role)
	})
}

func TestRequireRole(t *testing.T) {
	auth := NewAuthMiddleware(slog.Default(), testSecret)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := auth.Middleware(auth.RequireRole(entities.RoleAdmin)(next))

	t.Run("investor role is refused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, investorClaims("investor-1")))
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		require.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("admin role passes", func(t *testing.T) {
		claims := investorClaims("admin-1")
		claims.Role = entities.RoleAdmin
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)
		require.Equal(t, http.StatusOK, recorder.Code)
	})
}
