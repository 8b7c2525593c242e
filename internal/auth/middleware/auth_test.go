package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/userhub/backend/internal/auth/service"
	"github.com/userhub/backend/internal/models"
)

// mockDenylist is a mock implementation of Denylist
type mockDenylist struct {
	revoked map[string]bool
	err     error
}

func (m *mockDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.revoked[jti], nil
}

func (m *mockDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return m.err
}

func TestRequireRole(t *testing.T) {
	tg := service.NewTokenGenerator("test-secret", time.Hour)

	userToken, userClaims, err := tg.Generate("user-1", models.RoleUser, "Alice", "alice@example.com")
	require.NoError(t, err)
	adminToken, _, err := tg.Generate("admin@example.com", models.RoleAdmin, "", "admin@example.com")
	require.NoError(t, err)
	revokedToken, revokedClaims, err := tg.Generate("user-2", models.RoleUser, "", "")
	require.NoError(t, err)

	tests := []struct {
		name            string
		header          string
		role            models.Role
		denylist        *mockDenylist
		expectedStatus  int
		expectedMessage string
		expectedSubject string
	}{
		{
			name:            "valid user token",
			header:          "Bearer " + userToken,
			role:            models.RoleUser,
			denylist:        &mockDenylist{},
			expectedStatus:  http.StatusOK,
			expectedSubject: userClaims.Subject,
		},
		{
			name:            "lower case scheme",
			header:          "bearer " + adminToken,
			role:            models.RoleAdmin,
			denylist:        &mockDenylist{},
			expectedStatus:  http.StatusOK,
			expectedSubject: "admin@example.com",
		},
		{
			name:            "missing header",
			role:            models.RoleUser,
			denylist:        &mockDenylist{},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "authentication required",
		},
		{
			name:            "legacy header scheme",
			header:          userToken,
			role:            models.RoleUser,
			denylist:        &mockDenylist{},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "authentication required",
		},
		{
			name:            "invalid token",
			header:          "Bearer not-a-token",
			role:            models.RoleUser,
			denylist:        &mockDenylist{},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "invalid or expired token",
		},
		{
			name:            "revoked token",
			header:          "Bearer " + revokedToken,
			role:            models.RoleUser,
			denylist:        &mockDenylist{revoked: map[string]bool{revokedClaims.ID: true}},
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "invalid or expired token",
		},
		{
			name:            "denylist unavailable",
			header:          "Bearer " + userToken,
			role:            models.RoleUser,
			denylist:        &mockDenylist{err: errors.New("redis down")},
			expectedStatus:  http.StatusServiceUnavailable,
			expectedMessage: "authentication temporarily unavailable",
		},
		{
			name:            "user token on admin route",
			header:          "Bearer " + userToken,
			role:            models.RoleAdmin,
			denylist:        &mockDenylist{},
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "insufficient permissions",
		},
		{
			name:            "admin token on user route",
			header:          "Bearer " + adminToken,
			role:            models.RoleUser,
			denylist:        &mockDenylist{},
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "insufficient permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var subject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := GetClaims(r.Context())
				require.True(t, ok)
				subject = claims.Subject
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			RequireRole(tg, tt.denylist, tt.role)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedSubject, subject)
				return
			}
			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.expectedMessage, body.Message)
		})
	}
}

func TestGetClaims(t *testing.T) {
	_, ok := GetClaims(context.Background())
	assert.False(t, ok)

	claims := &service.Claims{Role: models.RoleUser}
	got, ok := GetClaims(WithClaims(context.Background(), claims))
	assert.True(t, ok)
	assert.Same(t, claims, got)
}
