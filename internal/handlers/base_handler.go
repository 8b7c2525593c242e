package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/userhub/backend/internal/models"
	"github.com/userhub/backend/internal/services"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, models.ErrorResponse{Status: "error", Message: message})
}

// RespondMessage sends a successful response carrying only a message
func (h *BaseHandler) RespondMessage(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, models.MessageResponse{Status: "ok", Message: message})
}

// RespondServiceError maps an error returned by a service to a status code and sends it.
// Unknown errors are logged and answered with a generic message.
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error, action string) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		h.RespondJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Message: "validation failed",
			Errors:  validationErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrEmailExists):
		h.RespondError(w, http.StatusConflict, models.ErrEmailExists.Error())
	case errors.Is(err, models.ErrUserNotFound):
		h.RespondError(w, http.StatusNotFound, models.ErrUserNotFound.Error())
	case errors.Is(err, models.ErrInvalidUserID):
		h.RespondError(w, http.StatusBadRequest, models.ErrInvalidUserID.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		h.RespondError(w, http.StatusUnauthorized, services.ErrInvalidCredentials.Error())
	case errors.Is(err, services.ErrNoFieldsToUpdate):
		h.RespondError(w, http.StatusBadRequest, services.ErrNoFieldsToUpdate.Error())
	case errors.Is(err, services.ErrInvalidImage):
		h.RespondError(w, http.StatusBadRequest, services.ErrInvalidImage.Error())
	case errors.Is(err, services.ErrImageTooLarge):
		h.RespondError(w, http.StatusRequestEntityTooLarge, services.ErrImageTooLarge.Error())
	default:
		h.Logger.Error("failed to "+action, zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
