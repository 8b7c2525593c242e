package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// allowedImageTypes maps accepted file extensions to the content type sniffed from their bytes
var allowedImageTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
}

// ImageStorage is the interface that wraps the file operations needed for profile images
type ImageStorage interface {
	// Save writes r to a new file with the given extension and returns its name and size
	Save(r io.Reader, extension string) (string, int64, error)
	// Delete removes a stored file
	Delete(name string) error
}

// ImageUpload is a profile image received with a request
type ImageUpload struct {
	File     io.ReadSeeker
	Filename string
	Size     int64
}

// ImageManager validates, stores and removes profile images
type ImageManager struct {
	storage      ImageStorage
	maxSize      int64
	defaultImage string
	logger       *zap.Logger
}

// NewImageManager creates a new image manager
func NewImageManager(storage ImageStorage, maxSize int64, defaultImage string, logger *zap.Logger) *ImageManager {
	return &ImageManager{
		storage:      storage,
		maxSize:      maxSize,
		defaultImage: defaultImage,
		logger:       logger,
	}
}

// DefaultImage returns the filename assigned to users without an uploaded image
func (m *ImageManager) DefaultImage() string {
	return m.defaultImage
}

// Store checks the upload and saves it, returning the stored file name.
// The extension and the sniffed content must both be jpeg or png.
func (m *ImageManager) Store(upload *ImageUpload) (string, error) {
	if upload.Size > m.maxSize {
		return "", ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	expected, ok := allowedImageTypes[ext]
	if !ok {
		return "", ErrInvalidImage
	}

	mtype, err := mimetype.DetectReader(upload.File)
	if err != nil {
		return "", fmt.Errorf("failed to detect image type: %w", err)
	}
	if !mtype.Is(expected) {
		return "", ErrInvalidImage
	}
	if _, err := upload.File.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind image: %w", err)
	}

	// Read one byte past the limit to catch uploads whose declared size was wrong
	name, size, err := m.storage.Save(io.LimitReader(upload.File, m.maxSize+1), ext)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	if size > m.maxSize {
		m.Discard(name)
		return "", ErrImageTooLarge
	}

	return name, nil
}

// Discard removes a stored image. Empty names and the default image are never removed.
// Failures are logged, not returned.
func (m *ImageManager) Discard(name string) {
	if name == "" || name == m.defaultImage {
		return
	}
	if err := m.storage.Delete(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("failed to delete profile image", zap.String("file", name), zap.Error(err))
	}
}
