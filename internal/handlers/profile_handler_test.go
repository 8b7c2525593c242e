package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/userhub/backend/internal/auth/service"
	"github.com/userhub/backend/internal/models"
	"github.com/userhub/backend/internal/services"
)

func newProfileRouter(svc *MockProfileService, claims *service.Claims) http.Handler {
	r := chi.NewRouter()
	authMW := passthrough
	if claims != nil {
		authMW = withClaims(claims)
	}
	NewProfileHandler(svc, testUploadsURL, testLogger()).RegisterRoutes(r, authMW)
	return r
}

func TestProfileHandler_GetProfile(t *testing.T) {
	user := newTestUser()
	claims := newClaims(user.ID.Hex(), models.RoleUser)

	tests := []struct {
		name           string
		claims         *service.Claims
		mockSetup      func(svc *MockProfileService)
		expectedStatus int
	}{
		{
			name:   "success",
			claims: claims,
			mockSetup: func(svc *MockProfileService) {
				svc.On("GetProfile", mock.Anything, user.ID.Hex()).Return(user, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "user not found",
			claims: claims,
			mockSetup: func(svc *MockProfileService) {
				svc.On("GetProfile", mock.Anything, user.ID.Hex()).Return(nil, models.ErrUserNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "no claims",
			mockSetup:      func(svc *MockProfileService) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProfileService)
			tt.mockSetup(svc)

			w := httptest.NewRecorder()
			newProfileRouter(svc, tt.claims).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}

	t.Run("response body", func(t *testing.T) {
		svc := new(MockProfileService)
		svc.On("GetProfile", mock.Anything, user.ID.Hex()).Return(user, nil).Once()

		w := httptest.NewRecorder()
		newProfileRouter(svc, claims).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profile", nil))

		var resp models.UserEnvelope
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, user.ID.Hex(), resp.User.ID)
		assert.Equal(t, "/uploads/avatar.png", resp.User.ProfileImageURL)
		assert.NotContains(t, w.Body.String(), "hash")
	})
}

func TestProfileHandler_UpdateProfile(t *testing.T) {
	user := newTestUser()
	claims := newClaims(user.ID.Hex(), models.RoleUser)

	t.Run("json body", func(t *testing.T) {
		svc := new(MockProfileService)
		svc.On("UpdateProfile", mock.Anything, user.ID.Hex(), mock.MatchedBy(func(req *models.UpdateProfileRequest) bool {
			return req.Name != nil && *req.Name == "Alice Jones" && req.Email == nil && req.Mobile == nil
		}), (*services.ImageUpload)(nil)).Return(user, nil).Once()

		w := httptest.NewRecorder()
		req := newJSONRequest(t, http.MethodPut, "/profile", map[string]string{"name": "Alice Jones"})
		newProfileRouter(svc, claims).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("multipart with image", func(t *testing.T) {
		svc := new(MockProfileService)
		svc.On("UpdateProfile", mock.Anything, user.ID.Hex(), mock.MatchedBy(func(req *models.UpdateProfileRequest) bool {
			return req.Name == nil && req.Mobile != nil && *req.Mobile == "9876543210"
		}), mock.MatchedBy(func(image *services.ImageUpload) bool {
			return image != nil && image.Filename == "me.png" && image.Size == 4
		})).Return(user, nil).Once()

		w := httptest.NewRecorder()
		req := newMultipartRequest(t, http.MethodPut, "/profile",
			map[string]string{"mobile": "9876543210"},
			&testFile{name: "me.png", content: []byte("\x89PNG")})
		newProfileRouter(svc, claims).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("empty file is ignored", func(t *testing.T) {
		svc := new(MockProfileService)
		svc.On("UpdateProfile", mock.Anything, user.ID.Hex(), mock.Anything, (*services.ImageUpload)(nil)).
			Return(nil, services.ErrNoFieldsToUpdate).Once()

		w := httptest.NewRecorder()
		req := newMultipartRequest(t, http.MethodPut, "/profile", nil, &testFile{name: "me.png"})
		newProfileRouter(svc, claims).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "no fields to update", decodeError(t, w).Message)
		svc.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		svc := new(MockProfileService)
		svc.On("UpdateProfile", mock.Anything, user.ID.Hex(), mock.Anything, mock.Anything).
			Return(nil, models.ErrEmailExists).Once()

		w := httptest.NewRecorder()
		req := newMultipartRequest(t, http.MethodPut, "/profile", map[string]string{"email": "bob@example.com"}, nil)
		newProfileRouter(svc, claims).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("image too large", func(t *testing.T) {
		svc := new(MockProfileService)
		svc.On("UpdateProfile", mock.Anything, user.ID.Hex(), mock.Anything, mock.Anything).
			Return(nil, services.ErrImageTooLarge).Once()

		w := httptest.NewRecorder()
		req := newMultipartRequest(t, http.MethodPut, "/profile", nil, &testFile{name: "big.png", content: []byte("data")})
		newProfileRouter(svc, claims).ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}
