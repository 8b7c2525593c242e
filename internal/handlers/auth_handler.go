package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/userhub/backend/internal/auth/middleware"
	"github.com/userhub/backend/internal/auth/service"
	"github.com/userhub/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for user authentication business logic.
type AuthService interface {
	// Method Signup validates the request and creates a new user.
	//
	// "req" parameter contains name, email, mobile and password.
	//
	// If the request is invalid, a *services.ValidationError will be returned.
	// If the email is already taken, models.ErrEmailExists will be returned.
	Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error)
	// Method Login checks the user credentials and returns a signed access token with its claims.
	//
	// "req" parameter contains email and password.
	//
	// If the email is unknown or the password does not match, services.ErrInvalidCredentials will be returned.
	Login(ctx context.Context, req *models.LoginRequest) (string, *service.Claims, error)
	// Method Logout revokes the token described by the claims.
	//
	// "claims" parameter is taken from the authenticated request.
	Logout(ctx context.Context, claims *service.Claims) error
}

// AuthHandler handles user authentication HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes.
// loginLimiter is applied to the login route only, authMiddleware guards logout.
func (h *AuthHandler) RegisterRoutes(r chi.Router, loginLimiter, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/signup", h.Signup)
	r.With(loginLimiter).Post("/login", h.Login)
	r.With(authMiddleware).Post("/logout", h.Logout)
}

// Signup handles POST /signup
// @Summary Register a new user
// @Description Register a new user. Accepts a JSON or a form body. New users get the default profile image.
// @Tags auth
// @Accept json,x-www-form-urlencoded,multipart/form-data
// @Produce json
// @Param request body models.SignupRequest true "New user"
// @Success 201 {object} models.MessageResponse "User registered"
// @Failure 400 {object} models.ErrorResponse "Validation failed"
// @Failure 409 {object} models.ErrorResponse "Email already exists"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSignupRequest(r)
	if err != nil {
		h.respondRequestError(w, err, "parse signup request")
		return
	}

	user, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		h.RespondServiceError(w, err, "sign up user")
		return
	}

	h.Logger.Info("user signed up", zap.String("user_id", user.ID.Hex()))
	h.RespondMessage(w, http.StatusCreated, "user registered successfully")
}

// Login handles POST /login
// @Summary Log in a user
// @Description Check user credentials and return a bearer token.
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.TokenResponse "Access token"
// @Failure 400 {object} models.ErrorResponse "Validation failed"
// @Failure 401 {object} models.ErrorResponse "Invalid email or password"
// @Failure 429 {object} models.ErrorResponse "Too many requests"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeLoginRequest(r)
	if err != nil {
		h.respondRequestError(w, err, "parse login request")
		return
	}

	token, claims, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.RespondServiceError(w, err, "log in user")
		return
	}

	h.RespondJSON(w, http.StatusOK, newTokenResponse(token, claims))
}

// Logout handles POST /logout
// @Summary Log out a user
// @Description Revoke the presented bearer token until it expires.
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.MessageResponse "Logged out"
// @Failure 401 {object} models.ErrorResponse "Authentication required"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.authService.Logout(r.Context(), claims); err != nil {
		h.RespondServiceError(w, err, "log out user")
		return
	}

	h.RespondMessage(w, http.StatusOK, "logged out successfully")
}

// decodeSignupRequest reads a signup request from a JSON or form body
func decodeSignupRequest(r *http.Request) (*models.SignupRequest, error) {
	req := &models.SignupRequest{}
	if isJSON(r) {
		if err := decodeJSON(r, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	form, err := parseForm(r)
	if err != nil {
		return nil, err
	}
	req.Name = form.get("name")
	req.Email = form.get("email")
	req.Mobile = models.MobileNumber(form.get("mobile"))
	req.Password = form.get("password")
	return req, nil
}

// decodeLoginRequest reads a login request from a JSON or form body
func decodeLoginRequest(r *http.Request) (*models.LoginRequest, error) {
	req := &models.LoginRequest{}
	if isJSON(r) {
		if err := decodeJSON(r, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	form, err := parseForm(r)
	if err != nil {
		return nil, err
	}
	req.Email = form.get("email")
	req.Password = form.get("password")
	return req, nil
}

// newTokenResponse builds the body returned by both login endpoints
func newTokenResponse(token string, claims *service.Claims) models.TokenResponse {
	resp := models.TokenResponse{
		Status:  "ok",
		Token:   token,
		Message: "login successful",
	}
	if claims != nil && claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return resp
}
