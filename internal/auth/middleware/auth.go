package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/userhub/backend/internal/auth/service"
	"github.com/userhub/backend/internal/logger"
	"github.com/userhub/backend/internal/middlewares"
	"github.com/userhub/backend/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const claimsKey contextKey = "claims"

// TokenValidator validates access tokens
type TokenValidator interface {
	// Validate parses the token and returns its claims
	Validate(token string) (*service.Claims, error)
}

// Denylist tells revoked tokens apart
type Denylist interface {
	// IsRevoked reports whether the token id has been revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Revoke marks the token id as revoked until expiresAt
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

// RequireRole validates the bearer token and checks the principal has the given role
func RequireRole(validator TokenValidator, denylist Denylist, role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				middlewares.WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				middlewares.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			revoked, err := denylist.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				logger.Logger.Error("failed to check token revocation",
					zap.String("request_id", middlewares.GetRequestID(r.Context())),
					zap.Error(err),
				)
				middlewares.WriteError(w, http.StatusServiceUnavailable, "authentication temporarily unavailable")
				return
			}
			if revoked {
				middlewares.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if claims.Role != role {
				middlewares.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>"
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetClaims retrieves the token claims from context
func GetClaims(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)
	return claims, ok
}

// WithClaims stores claims in the context. Handlers under test use it in place of RequireRole.
func WithClaims(ctx context.Context, claims *service.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
