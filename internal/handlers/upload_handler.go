package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/userhub/backend/internal/storage"
	"go.uber.org/zap"
)

// FileOpener is the interface that wraps read access to stored uploads
type FileOpener interface {
	// Method Open opens a stored file for reading.
	//
	// "name" parameter is the stored file name, without any directory part.
	//
	// If the name is not a plain file name, storage.ErrInvalidFileName will be returned.
	Open(name string) (*os.File, error)
}

// UploadHandler serves uploaded profile images read-only
type UploadHandler struct {
	BaseHandler
	files  FileOpener
	prefix string
}

// NewUploadHandler creates a new upload handler serving files under prefix
func NewUploadHandler(files FileOpener, prefix string, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler: BaseHandler{Logger: logger},
		files:       files,
		prefix:      prefix,
	}
}

// RegisterRoutes registers the upload route. Directory listing is not exposed.
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.Get(h.prefix+"/{filename}", h.ServeFile)
}

// ServeFile handles GET /uploads/{filename}
// @Summary Get an uploaded file
// @Description Serve a stored profile image.
// @Tags uploads
// @Produce image/jpeg,image/png
// @Param filename path string true "Stored file name"
// @Success 200 {file} file "Image"
// @Failure 404 {object} models.ErrorResponse "File not found"
// @Router /uploads/{filename} [get]
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	file, err := h.files.Open(name)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, storage.ErrInvalidFileName) {
			h.Logger.Error("failed to open upload", zap.String("file", name), zap.Error(err))
		}
		h.RespondError(w, http.StatusNotFound, "file not found")
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		h.RespondError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}
