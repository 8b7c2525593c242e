package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/userhub/backend/internal/auth/service"
	"github.com/userhub/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer is the interface that wraps access token generation
type TokenIssuer interface {
	// Method Generate signs a new access token.
	//
	// "subject" parameter is the user ID for users and the admin email for the admin.
	// "role" parameter is the role the token grants.
	//
	// The signed token is returned together with its claims.
	Generate(subject string, role models.Role, name, email string) (string, *service.Claims, error)
}

// TokenRevoker is the interface that wraps access token revocation
type TokenRevoker interface {
	// Method Revoke marks the token ID as revoked until the token expires.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

// TaskEnqueuer is the interface that wraps background task scheduling for new users
type TaskEnqueuer interface {
	// Method EnqueueWelcomeEmail schedules a welcome email for a new user.
	EnqueueWelcomeEmail(ctx context.Context, email, name string) error
}

// authService implements AuthService
type authService struct {
	userRepo     UserRepository
	tokens       TokenIssuer
	revoker      TokenRevoker
	enqueuer     TaskEnqueuer
	validate     *validator.Validate
	bcryptCost   int
	defaultImage string
	dummyHash    []byte
	logger       *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo UserRepository,
	tokens TokenIssuer,
	revoker TokenRevoker,
	enqueuer TaskEnqueuer,
	bcryptCost int,
	defaultImage string,
	logger *zap.Logger,
) *authService {
	// Compared against when the email is unknown so both failure paths cost a bcrypt round
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("dummy-password"), bcryptCost)

	return &authService{
		userRepo:     userRepo,
		tokens:       tokens,
		revoker:      revoker,
		enqueuer:     enqueuer,
		validate:     newValidator(),
		bcryptCost:   bcryptCost,
		defaultImage: defaultImage,
		dummyHash:    dummyHash,
		logger:       logger,
	}
}

// Signup registers a new user with the default profile image
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Mobile = models.MobileNumber(strings.TrimSpace(string(req.Mobile)))

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, models.ErrEmailExists
	}

	mobile, err := parseMobile(req.Mobile)
	if err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       mobile,
		PasswordHash: passwordHash,
		ProfileImage: s.defaultImage,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// The welcome email is best effort and must not fail the registration
	if err := s.enqueuer.EnqueueWelcomeEmail(ctx, user.Email, user.Name); err != nil {
		s.logger.Warn("failed to enqueue welcome email", zap.String("userId", user.ID.Hex()), zap.Error(err))
	}

	return user, nil
}

// Login authenticates a user and issues an access token
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, *service.Claims, error) {
	email := normalizeEmail(req.Email)
	if err := requireCredentials(email, req.Password); err != nil {
		return "", nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Generate(user.ID.Hex(), models.RoleUser, user.Name, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return token, claims, nil
}

// Logout revokes the presented access token
func (s *authService) Logout(ctx context.Context, claims *service.Claims) error {
	return revokeToken(ctx, s.revoker, claims)
}

// revokeToken puts the token ID on the denylist until the token expires
func revokeToken(ctx context.Context, revoker TokenRevoker, claims *service.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return fmt.Errorf("failed to revoke token: missing claims")
	}
	if err := revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// requireCredentials reports missing login fields as a *ValidationError
func requireCredentials(email, password string) error {
	fields := make(map[string]string)
	if email == "" {
		fields["email"] = "is required"
	}
	if password == "" {
		fields["password"] = "is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
