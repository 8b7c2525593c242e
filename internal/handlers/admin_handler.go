package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/userhub/backend/internal/auth/middleware"
	"github.com/userhub/backend/internal/auth/service"
	"github.com/userhub/backend/internal/models"
	"github.com/userhub/backend/internal/services"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for admin business logic.
type AdminService interface {
	// Method Login checks the admin credentials and returns a signed access token with its claims.
	//
	// "req" parameter contains email and password.
	//
	// If the credentials do not match the configured admin, services.ErrInvalidCredentials will be returned.
	Login(ctx context.Context, req *models.LoginRequest) (string, *service.Claims, error)
	// Method Logout revokes the token described by the claims.
	//
	// "claims" parameter is taken from the authenticated request.
	Logout(ctx context.Context, claims *service.Claims) error
	// Method ListUsers retrieves a page of users, newest first.
	//
	// "filter" parameter holds the search string, the page and the page size.
	// Page and page size are normalized by the service.
	ListUsers(ctx context.Context, filter models.UserFilter) (*services.UserPage, error)
	// Method GetUser retrieves a user by ID.
	//
	// "userID" parameter is the hex encoded user ID.
	//
	// If the ID is malformed, models.ErrInvalidUserID will be returned.
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	GetUser(ctx context.Context, userID string) (*models.User, error)
	// Method CreateUser validates the request and creates a user.
	//
	// "req" parameter contains name, email, mobile and password.
	// "image" parameter is an optional profile image, the default image is used without it.
	//
	// If the email is already taken, models.ErrEmailExists will be returned.
	CreateUser(ctx context.Context, req *models.CreateUserRequest, image *services.ImageUpload) (*models.User, error)
	// Method UpdateUser applies the provided fields and the optional image to a user.
	//
	// "userID" parameter is the hex encoded user ID.
	// "req" parameter holds the fields to change, nil fields are left untouched.
	// "image" parameter is an optional new profile image.
	//
	// If the email belongs to another user, models.ErrEmailExists will be returned.
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	UpdateUser(ctx context.Context, userID string, req *models.UpdateUserRequest, image *services.ImageUpload) (*models.User, error)
	// Method DeleteUser removes a user and its profile image.
	//
	// "userID" parameter is the hex encoded user ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	DeleteUser(ctx context.Context, userID string) error
}

// AdminHandler handles admin-related HTTP requests
type AdminHandler struct {
	BaseHandler
	adminService AdminService
	uploadsURL   string
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService, uploadsURL string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		adminService: adminService,
		uploadsURL:   uploadsURL,
	}
}

// RegisterRoutes registers all admin handler routes.
// loginLimiter is applied to the login route only, adminMiddleware guards everything else.
func (h *AdminHandler) RegisterRoutes(r chi.Router, loginLimiter, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Post("/logout", h.Logout)
			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/{userId}", h.GetUser)
				r.Put("/{userId}", h.UpdateUser)
				r.Delete("/{userId}", h.DeleteUser)
			})
		})
	})
}

// Login handles POST /admin/login
// @Summary Log in the admin
// @Description Check the admin credentials and return a bearer token with the admin role.
// @Tags admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body models.LoginRequest true "Admin credentials"
// @Success 200 {object} models.TokenResponse "Access token"
// @Failure 400 {object} models.ErrorResponse "Validation failed"
// @Failure 401 {object} models.ErrorResponse "Invalid email or password"
// @Failure 429 {object} models.ErrorResponse "Too many requests"
// @Router /admin/login [post]
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLoginRequest(r)
	if err != nil {
		h.respondRequestError(w, err, "parse admin login request")
		return
	}

	token, claims, err := h.adminService.Login(r.Context(), req)
	if err != nil {
		h.RespondServiceError(w, err, "log in admin")
		return
	}

	h.RespondJSON(w, http.StatusOK, newTokenResponse(token, claims))
}

// Logout handles POST /admin/logout
// @Summary Log out the admin
// @Description Revoke the presented admin token until it expires.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.MessageResponse "Logged out"
// @Failure 401 {object} models.ErrorResponse "Authentication required"
// @Failure 403 {object} models.ErrorResponse "Insufficient permissions"
// @Router /admin/logout [post]
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.adminService.Logout(r.Context(), claims); err != nil {
		h.RespondServiceError(w, err, "log out admin")
		return
	}

	h.RespondMessage(w, http.StatusOK, "logged out successfully")
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Description Get a page of users sorted by creation time, newest first.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number (default 1)"
// @Param count query int false "Page size (default 20, max 100)"
// @Param search query string false "Case-insensitive substring of name or email"
// @Success 200 {object} models.UserListResponse "Page of users"
// @Failure 400 {object} models.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} models.ErrorResponse "Authentication required"
// @Failure 403 {object} models.ErrorResponse "Insufficient permissions"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := intQueryParam(query.Get("page"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	count, err := intQueryParam(query.Get("count"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "count must be an integer")
		return
	}

	result, err := h.adminService.ListUsers(r.Context(), models.UserFilter{
		Search: query.Get("search"),
		Page:   page,
		Count:  count,
	})
	if err != nil {
		h.RespondServiceError(w, err, "list users")
		return
	}

	users := make([]models.UserResponse, 0, len(result.Users))
	for i := range result.Users {
		users = append(users, models.NewUserResponse(&result.Users[i], h.uploadsURL))
	}

	h.RespondJSON(w, http.StatusOK, models.UserListResponse{
		Status: "ok",
		Users:  users,
		Total:  result.Total,
		Page:   result.Page,
		Count:  result.Count,
	})
}

// GetUser handles GET /admin/users/{userId}
// @Summary Get a user
// @Description Get a single user by ID.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Success 200 {object} models.UserEnvelope "User"
// @Failure 400 {object} models.ErrorResponse "Invalid user id"
// @Failure 401 {object} models.ErrorResponse "Authentication required"
// @Failure 403 {object} models.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /admin/users/{userId} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.adminService.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.RespondServiceError(w, err, "get user")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.UserEnvelope{Status: "ok", User: models.NewUserResponse(user, h.uploadsURL)})
}

// CreateUser handles POST /admin/users
// @Summary Create a user
// @Description Create a user with an optional profile image. Without an image the default one is assigned.
// @Tags admin
// @Accept multipart/form-data,json
// @Produce json
// @Security ApiKeyAuth
// @Param name formData string true "Name"
// @Param email formData string true "Email"
// @Param mobile formData string true "10 digit mobile number"
// @Param password formData string true "Password"
// @Param profileImage formData file false "Profile image (jpeg or png)"
// @Success 201 {object} models.UserEnvelope "Created user"
// @Failure 400 {object} models.ErrorResponse "Validation failed"
// @Failure 401 {object} models.ErrorResponse "Authentication required"
// @Failure 403 {object} models.ErrorResponse "Insufficient permissions"
// @Failure 409 {object} models.ErrorResponse "Email already exists"
// @Failure 413 {object} models.ErrorResponse "Image too large"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	req := &models.CreateUserRequest{}
	var image *services.ImageUpload
	if isJSON(r) {
		if err := decodeJSON(r, req); err != nil {
			h.respondRequestError(w, err, "parse create user request")
			return
		}
	} else {
		form, err := parseForm(r)
		if err != nil {
			h.respondRequestError(w, err, "parse create user request")
			return
		}
		req.Name = form.get("name")
		req.Email = form.get("email")
		req.Mobile = models.MobileNumber(form.get("mobile"))
		req.Password = form.get("password")

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

	user, err := h.adminService.CreateUser(r.Context(), req, image)
	if err != nil {
		h.RespondServiceError(w, err, "create user")
		return
	}

	h.RespondJSON(w, http.StatusCreated, models.UserEnvelope{Status: "ok", User: models.NewUserResponse(user, h.uploadsURL)})
}

// UpdateUser handles PUT /admin/users/{userId}
// @Summary Update a user
// @Description Update the provided fields of a user. A sent password is validated and re-hashed. A new image replaces the old one.
// @Tags admin
// @Accept multipart/form-data,json
// @Produce json
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Param name formData string false "New name"
// @Param email formData string false "New email"
// @Param mobile formData string false "New 10 digit mobile number"
// @Param password formData string false "New password"
// @Param profileImage formData file false "New profile image (jpeg or png)"
// @Success 200 {object} models.UserEnvelope "Updated user"
// @Failure 400 {object} models.ErrorResponse "Validation failed or nothing to update"
// @Failure 401 {object} models.ErrorResponse "Authentication required"
// @Failure 403 {object} models.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 409 {object} models.ErrorResponse "Email already exists"
// @Failure 413 {object} models.ErrorResponse "Image too large"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /admin/users/{userId} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	req := &models.UpdateUserRequest{}
	var image *services.ImageUpload
	if isJSON(r) {
		if err := decodeJSON(r, req); err != nil {
			h.respondRequestError(w, err, "parse update user request")
			return
		}
	} else {
		form, err := parseForm(r)
		if err != nil {
			h.respondRequestError(w, err, "parse update user request")
			return
		}
		req.Name = form.optional("name")
		req.Email = form.optional("email")
		req.Mobile = form.optionalMobile("mobile")
		req.Password = form.optional("password")

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

	user, err := h.adminService.UpdateUser(r.Context(), chi.URLParam(r, "userId"), req, image)
	if err != nil {
		h.RespondServiceError(w, err, "update user")
		return
	}

	h.RespondJSON(w, http.StatusOK, models.UserEnvelope{Status: "ok", User: models.NewUserResponse(user, h.uploadsURL)})
}

// DeleteUser handles DELETE /admin/users/{userId}
// @Summary Delete a user
// @Description Delete a user together with its profile image.
// @Tags admin
// @Produce json
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Success 200 {object} models.MessageResponse "User deleted"
// @Failure 400 {object} models.ErrorResponse "Invalid user id"
// @Failure 401 {object} models.ErrorResponse "Authentication required"
// @Failure 403 {object} models.ErrorResponse "Insufficient permissions"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /admin/users/{userId} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := h.adminService.DeleteUser(r.Context(), userID); err != nil {
		h.RespondServiceError(w, err, "delete user")
		return
	}

	h.RespondMessage(w, http.StatusOK, "user deleted successfully")
}

// intQueryParam parses an optional integer query parameter, 0 when absent
func intQueryParam(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
