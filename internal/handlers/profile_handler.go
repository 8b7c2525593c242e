package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/userhub/backend/internal/auth/middleware"
	"github.com/userhub/backend/internal/models"
	"github.com/userhub/backend/internal/services"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for the authenticated user's profile.
type ProfileService interface {
	// Method GetProfile retrieves the profile of the user.
	//
	// "userID" parameter is the subject of the user's access token.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	// Method UpdateProfile applies the provided fields and the optional image to the profile.
	//
	// "userID" parameter is the subject of the user's access token.
	// "req" parameter holds the fields to change, nil fields are left untouched.
	// "image" parameter is an optional new profile image.
	//
	// If nothing is provided, services.ErrNoFieldsToUpdate will be returned.
	// If the email belongs to another user, models.ErrEmailExists will be returned.
	UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest, image *services.ImageUpload) (*models.User, error)
}

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	BaseHandler
	profileService ProfileService
	uploadsURL     string
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, uploadsURL string, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		profileService: profileService,
		uploadsURL:     uploadsURL,
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/profile", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetProfile)
		r.Put("/", h.UpdateProfile)
	})
}

// GetProfile handles GET /profile
// @Summary Get user profile
// @Description Get the profile of the authenticated user.
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.UserEnvelope "User profile"
// @Failure 401 {object} models.ErrorResponse "Authentication required"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.profileService.GetProfile(r.Context(), claims.Subject)
	if err != nil {
		h.RespondServiceError(w, err, "get profile")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.UserEnvelope{Status: "ok", User: models.NewUserResponse(user, h.uploadsURL)})
}

// UpdateProfile handles PUT /profile
// @Summary Update user profile
// @Description Update name, email, mobile and profile image of the authenticated user.
// @Description Only provided, non-empty fields are applied. A JSON body cannot carry an image.
// @Tags profile
// @Accept multipart/form-data,json
// @Produce json
// @Security ApiKeyAuth
// @Param name formData string false "New name"
// @Param email formData string false "New email"
// @Param mobile formData string false "New 10 digit mobile number"
// @Param profileImage formData file false "New profile image (jpeg or png)"
// @Success 200 {object} models.UserEnvelope "Updated profile"
// @Failure 400 {object} models.ErrorResponse "Validation failed or nothing to update"
// @Failure 401 {object} models.ErrorResponse "Authentication required"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 409 {object} models.ErrorResponse "Email already exists"
// @Failure 413 {object} models.ErrorResponse "Image too large"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req := &models.UpdateProfileRequest{}
	var image *services.ImageUpload
	if isJSON(r) {
		if err := decodeJSON(r, req); err != nil {
			h.respondRequestError(w, err, "parse profile update")
			return
		}
	} else {
		form, err := parseForm(r)
		if err != nil {
			h.respondRequestError(w, err, "parse profile update")
			return
		}
		req.Name = form.optional("name")
		req.Email = form.optional("email")
		req.Mobile = form.optionalMobile("mobile")

		upload, file, err := imageFromForm(r)
		if err != nil {
			h.respondRequestError(w, err, "read profile image")
			return
		}
		if file != nil {
			defer file.Close()
		}
		image = upload
	}

	user, err := h.profileService.UpdateProfile(r.Context(), claims.Subject, req, image)
	if err != nil {
		h.RespondServiceError(w, err, "update profile")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.UserEnvelope{Status: "ok", User: models.NewUserResponse(user, h.uploadsURL)})
}
