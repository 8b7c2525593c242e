package services

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/userhub/backend/internal/auth/service"
	"github.com/userhub/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Paging limits for the users list
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxPage         = 1_000_000
)

// AdminCredentials identify the single admin principal
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// UserPage is a page of users together with the paging it was produced with
type UserPage struct {
	Users []models.User
	Total int64
	Page  int
	Count int
}

// adminService implements AdminService
type adminService struct {
	userRepo   UserRepository
	tokens     TokenIssuer
	revoker    TokenRevoker
	images     *ImageManager
	admin      AdminCredentials
	validate   *validator.Validate
	bcryptCost int
	logger     *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	userRepo UserRepository,
	tokens TokenIssuer,
	revoker TokenRevoker,
	images *ImageManager,
	admin AdminCredentials,
	bcryptCost int,
	logger *zap.Logger,
) *adminService {
	admin.Email = normalizeEmail(admin.Email)
	return &adminService{
		userRepo:   userRepo,
		tokens:     tokens,
		revoker:    revoker,
		images:     images,
		admin:      admin,
		validate:   newValidator(),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login authenticates the admin and issues an access token with the admin role
func (s *adminService) Login(ctx context.Context, req *models.LoginRequest) (string, *service.Claims, error) {
	email := normalizeEmail(req.Email)
	if err := requireCredentials(email, req.Password); err != nil {
		return "", nil, err
	}

	// Both checks always run so a wrong email costs as much as a wrong password
	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(s.admin.Email)) == 1
	passwordErr := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(req.Password))
	if !emailMatch || passwordErr != nil {
		s.logger.Warn("failed admin login attempt", zap.String("email", email))
		return "", nil, ErrInvalidCredentials
	}

	return s.tokens.Generate(s.admin.Email, models.RoleAdmin, "admin", s.admin.Email)
}

// Logout revokes the admin access token
func (s *adminService) Logout(ctx context.Context, claims *service.Claims) error {
	return revokeToken(ctx, s.revoker, claims)
}

// ListUsers returns a page of users matching the filter.
// Page defaults to 1 and is capped at MaxPage, count defaults to DefaultPageSize and is capped at MaxPageSize.
func (s *adminService) ListUsers(ctx context.Context, filter models.UserFilter) (*UserPage, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Page > MaxPage {
		filter.Page = MaxPage
	}
	if filter.Count < 1 {
		filter.Count = DefaultPageSize
	}
	if filter.Count > MaxPageSize {
		filter.Count = MaxPageSize
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &UserPage{
		Users: users,
		Total: total,
		Page:  filter.Page,
		Count: filter.Count,
	}, nil
}

// GetUser returns a single user
func (s *adminService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// CreateUser creates a user on behalf of the admin, with the uploaded image or the default one
func (s *adminService) CreateUser(ctx context.Context, req *models.CreateUserRequest, image *ImageUpload) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Mobile = models.MobileNumber(strings.TrimSpace(string(req.Mobile)))

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
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

	profileImage := s.images.DefaultImage()
	if image != nil {
		if profileImage, err = s.images.Store(image); err != nil {
			return nil, err
		}
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       mobile,
		PasswordHash: passwordHash,
		ProfileImage: profileImage,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.images.Discard(profileImage)
		return nil, err
	}

	s.logger.Info("user created by admin", zap.String("userId", user.ID.Hex()))
	return user, nil
}

// UpdateUser merges the provided fields, the optional new password and the optional image into a user
func (s *adminService) UpdateUser(ctx context.Context, userID string, req *models.UpdateUserRequest, image *ImageUpload) (*models.User, error) {
	req.Name = normalizeOptional(req.Name)
	req.Email = normalizeOptional(req.Email)
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	req.Mobile = normalizeOptionalMobile(req.Mobile)
	if req.Password != nil && *req.Password == "" {
		req.Password = nil
	}

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	update, err := buildUserUpdate(req.Name, req.Email, req.Mobile)
	if err != nil {
		return nil, err
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}

	return applyUserUpdate(ctx, s.userRepo, s.images, userID, update, image)
}

// DeleteUser removes a user together with its profile image
func (s *adminService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.Delete(ctx, userID)
	if err != nil {
		return err
	}

	s.images.Discard(user.ProfileImage)
	s.logger.Info("user deleted by admin", zap.String("userId", userID))
	return nil
}
