package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidFileName is returned for names that would escape the storage directory
var ErrInvalidFileName = errors.New("invalid file name")

// tempPrefix marks files still being written
const tempPrefix = ".upload-"

// FileInfo describes a stored file
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
	// Temp is set for files left behind by an interrupted Save
	Temp bool
}

// localStorage stores files flat in a single directory on the local filesystem
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// BasePath returns the directory files are stored in
func (s *localStorage) BasePath() string {
	return s.basePath
}

// path resolves a stored file name to its location, rejecting anything but a plain file name
func (s *localStorage) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", ErrInvalidFileName
	}
	return filepath.Join(s.basePath, name), nil
}

// Save writes r to a new uniquely named file with the given extension.
// It returns the stored name and the number of bytes written.
func (s *localStorage) Save(r io.Reader, extension string) (string, int64, error) {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Write to a temp file first so readers never see a partial file
	tmp, err := os.CreateTemp(s.basePath, tempPrefix+"*")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		cleanup()
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", 0, fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		cleanup()
		return "", 0, fmt.Errorf("failed to set file permissions: %w", err)
	}

	name := GenerateFileName(extension)
	if err := os.Rename(tmpPath, filepath.Join(s.basePath, name)); err != nil {
		cleanup()
		return "", 0, fmt.Errorf("failed to store file: %w", err)
	}

	return name, size, nil
}

// Open opens a stored file for reading. Files still being written are not served.
func (s *localStorage) Open(name string) (*os.File, error) {
	if strings.HasPrefix(name, tempPrefix) {
		return nil, ErrInvalidFileName
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes a stored file
func (s *localStorage) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// List returns the stored files, including leftover temp files. A missing directory holds no files.
func (s *localStorage) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if errors.Is(err, os.ErrNotExist) {
		return []FileInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Temp:    strings.HasPrefix(entry.Name(), tempPrefix),
		})
	}

	return files, nil
}
