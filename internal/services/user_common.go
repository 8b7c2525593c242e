package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/userhub/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for users collection data access
type UserRepository interface {
	// Method Create inserts a new user and fills in its ID and timestamps.
	//
	// "user" parameter is the user to insert.
	//
	// If the email is already taken, models.ErrEmailExists will be returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByID retrieves a user by ID.
	//
	// "id" parameter is the hex encoded user ID.
	//
	// If the ID is malformed, models.ErrInvalidUserID will be returned.
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// Method GetByEmail retrieves a user by email.
	//
	// "email" parameter is the normalized email.
	//
	// If user with such email does not exist, models.ErrUserNotFound will be returned.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// "email" parameter is the normalized email.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method List retrieves a page of users sorted by creation time, newest first.
	//
	// "filter" parameter holds the search string and the already normalized page and count.
	//
	// The total number of users matching the search is returned together with the page.
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error)
	// Method Update applies the non-nil fields of the update and returns the updated user.
	//
	// "id" parameter is the hex encoded user ID.
	// "update" parameter holds the fields to change.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	Update(ctx context.Context, id string, update *models.UserUpdate) (*models.User, error)
	// Method Delete removes a user and returns the removed document.
	//
	// "id" parameter is the hex encoded user ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound will be returned.
	Delete(ctx context.Context, id string) (*models.User, error)
}

// normalizeEmail lower-cases and trims an email
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeOptional trims an optional value. Blank values count as not provided.
func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeOptionalMobile trims an optional mobile number. Blank values count as not provided.
func normalizeOptionalMobile(value *models.MobileNumber) *models.MobileNumber {
	if value == nil {
		return nil
	}
	trimmed := models.MobileNumber(strings.TrimSpace(string(*value)))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseMobile converts an already validated mobile number to its stored form
func parseMobile(mobile models.MobileNumber) (int64, error) {
	n, err := strconv.ParseInt(string(mobile), 10, 64)
	if err != nil {
		return 0, newFieldError("mobile", mobileMessage)
	}
	return n, nil
}

// hashPassword hashes a password with bcrypt
func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// checkEmailAvailable returns models.ErrEmailExists when the email belongs to a user other than selfID.
// An empty selfID means no user may own the email.
func checkEmailAvailable(ctx context.Context, repo UserRepository, email, selfID string) error {
	owner, err := repo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if selfID != "" && owner.ID.Hex() == selfID {
		return nil
	}
	return models.ErrEmailExists
}

// buildUserUpdate converts the optional profile fields into a repository update.
// Email and name must be normalized already.
func buildUserUpdate(name, email *string, mobile *models.MobileNumber) (*models.UserUpdate, error) {
	update := &models.UserUpdate{Name: name, Email: email}
	if mobile != nil {
		n, err := parseMobile(*mobile)
		if err != nil {
			return nil, err
		}
		update.Mobile = &n
	}
	return update, nil
}
