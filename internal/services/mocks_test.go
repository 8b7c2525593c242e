package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/userhub/backend/internal/auth/service"
	"github.com/userhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Magic bytes recognised by the content sniffer
var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	jpegBytes = append([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), make([]byte, 64)...)
)

const testDefaultImage = "default.jpg"

// mockUserRepository is an in-memory implementation of UserRepository
type mockUserRepository struct {
	users map[string]*models.User

	createErr error
	getErr    error
	existsErr error
	listErr   error
	updateErr error
	deleteErr error

	lastFilter models.UserFilter
	lastUpdate *models.UserUpdate
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID.Hex()] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID.Hex()] = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, models.ErrInvalidUserID
	}
	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int64, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	users := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, *user)
	}
	return users, int64(len(users)), nil
}

func (m *mockUserRepository) Update(ctx context.Context, id string, update *models.UserUpdate) (*models.User, error) {
	m.lastUpdate = update
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Mobile != nil {
		user.Mobile = *update.Mobile
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.ProfileImage != nil {
		user.ProfileImage = *update.ProfileImage
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, models.ErrInvalidUserID
	}
	user, ok := m.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	delete(m.users, id)
	return user, nil
}

// mockStorage is an in-memory implementation of ImageStorage
type mockStorage struct {
	files     map[string][]byte
	saveErr   error
	deleteErr error
	deleted   []string
	counter   int
}

func newMockStorage(names ...string) *mockStorage {
	m := &mockStorage{files: make(map[string][]byte)}
	for _, name := range names {
		m.files[name] = []byte("existing")
	}
	return m
}

func (m *mockStorage) Save(r io.Reader, extension string) (string, int64, error) {
	if m.saveErr != nil {
		return "", 0, m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	m.counter++
	name := strings.Repeat("f", m.counter) + extension
	m.files[name] = data
	return name, int64(len(data)), nil
}

func (m *mockStorage) Delete(name string) error {
	m.deleted = append(m.deleted, name)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.files, name)
	return nil
}

// mockTokenIssuer is a mock implementation of TokenIssuer
type mockTokenIssuer struct {
	err         error
	lastSubject string
	lastRole    models.Role
}

func (m *mockTokenIssuer) Generate(subject string, role models.Role, name, email string) (string, *service.Claims, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	m.lastSubject = subject
	m.lastRole = role
	claims := &service.Claims{
		Role:  role,
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	return "signed-token", claims, nil
}

// mockRevoker is a mock implementation of TokenRevoker
type mockRevoker struct {
	err     error
	revoked []string
}

func (m *mockRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.revoked = append(m.revoked, jti)
	return nil
}

// mockEnqueuer is a mock implementation of TaskEnqueuer
type mockEnqueuer struct {
	err        error
	recipients []string
}

func (m *mockEnqueuer) EnqueueWelcomeEmail(ctx context.Context, email, name string) error {
	if m.err != nil {
		return m.err
	}
	m.recipients = append(m.recipients, email)
	return nil
}

var errDatabase = errors.New("database unavailable")

func newTestImageManager(storage *mockStorage) *ImageManager {
	return NewImageManager(storage, 1024, testDefaultImage, zap.NewNop())
}

func newUpload(name string, data []byte) *ImageUpload {
	return &ImageUpload{File: bytes.NewReader(data), Filename: name, Size: int64(len(data))}
}

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

func strPtr(s string) *string {
	return &s
}

func mobilePtr(s string) *models.MobileNumber {
	m := models.MobileNumber(s)
	return &m
}

func existingUser(email, image string) *models.User {
	return &models.User{
		ID:           primitive.NewObjectID(),
		Name:         "Existing User",
		Email:        email,
		Mobile:       9876543210,
		PasswordHash: mustHash("Passw0rd!"),
		ProfileImage: image,
	}
}
