package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/userhub/backend/internal/models"
	"go.uber.org/zap"
)

// profileService implements ProfileService
type profileService struct {
	userRepo UserRepository
	images   *ImageManager
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo UserRepository, images *ImageManager, logger *zap.Logger) *profileService {
	return &profileService{
		userRepo: userRepo,
		images:   images,
		validate: newValidator(),
		logger:   logger,
	}
}

// GetProfile returns the user the token was issued to
func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile merges the provided fields and the optional image into the user's profile
func (s *profileService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest, image *ImageUpload) (*models.User, error) {
	req.Name = normalizeOptional(req.Name)
	req.Email = normalizeOptional(req.Email)
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		req.Email = &email
	}
	req.Mobile = normalizeOptionalMobile(req.Mobile)

	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	update, err := buildUserUpdate(req.Name, req.Email, req.Mobile)
	if err != nil {
		return nil, err
	}

	return applyUserUpdate(ctx, s.userRepo, s.images, userID, update, image)
}

// applyUserUpdate stores the optional image and applies the update.
// The replaced image is removed once the update succeeded. A stored image is removed again when it did not.
func applyUserUpdate(ctx context.Context, repo UserRepository, images *ImageManager, userID string, update *models.UserUpdate, image *ImageUpload) (*models.User, error) {
	if update.IsEmpty() && image == nil {
		return nil, ErrNoFieldsToUpdate
	}

	current, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Email != nil {
		if err := checkEmailAvailable(ctx, repo, *update.Email, userID); err != nil {
			return nil, err
		}
	}

	var stored string
	if image != nil {
		stored, err = images.Store(image)
		if err != nil {
			return nil, err
		}
		update.ProfileImage = &stored
	}

	updated, err := repo.Update(ctx, userID, update)
	if err != nil {
		images.Discard(stored)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if stored != "" && current.ProfileImage != stored {
		images.Discard(current.ProfileImage)
	}

	return updated, nil
}
