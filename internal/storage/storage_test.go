package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFileName(t *testing.T) {
	tests := []struct {
		name      string
		extension string
		suffix    string
	}{
		{name: "with dot", extension: ".png", suffix: ".png"},
		{name: "without dot", extension: "jpg", suffix: ".jpg"},
		{name: "upper case", extension: ".JPEG", suffix: ".jpeg"},
		{name: "empty", extension: "", suffix: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := GenerateFileName(tt.extension)

			assert.True(t, strings.HasSuffix(name, tt.suffix))
			_, err := uuid.Parse(strings.TrimSuffix(name, tt.suffix))
			assert.NoError(t, err)
		})
	}
}

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewLocalStorage(dir)

	name, size, err := s.Save(strings.NewReader("image-bytes"), ".png")
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)
	assert.True(t, strings.HasSuffix(name, ".png"))

	f, err := s.Open(name)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "image-bytes", string(data))

	require.NoError(t, s.Delete(name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = s.Delete(name)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStorage_InvalidNames(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	for _, name := range []string{"", ".", "..", "../secret", "a/b.png", `a\b.png`} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Open(name)
			assert.ErrorIs(t, err, ErrInvalidFileName)
			assert.ErrorIs(t, s.Delete(name), ErrInvalidFileName)
		})
	}
}

func TestLocalStorage_TempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	name := tempPrefix + "123"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("partial"), 0644))

	_, err := s.Open(name)
	assert.ErrorIs(t, err, ErrInvalidFileName)

	require.NoError(t, s.Delete(name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStorage_List(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		s := NewLocalStorage(filepath.Join(t.TempDir(), "missing"))

		files, err := s.List()

		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("skips directories and marks temp files", func(t *testing.T) {
		dir := t.TempDir()
		s := NewLocalStorage(dir)
		name, _, err := s.Save(strings.NewReader("abc"), ".jpg")
		require.NoError(t, err)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, tempPrefix+"partial"), []byte("x"), 0644))

		files, err := s.List()

		require.NoError(t, err)
		require.Len(t, files, 2)
		byName := make(map[string]FileInfo, len(files))
		for _, f := range files {
			byName[f.Name] = f
		}
		stored := byName[name]
		assert.Equal(t, int64(3), stored.Size)
		assert.False(t, stored.ModTime.IsZero())
		assert.False(t, stored.Temp)
		assert.True(t, byName[tempPrefix+"partial"].Temp)
	})
}
