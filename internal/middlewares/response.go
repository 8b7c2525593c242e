package middlewares

import (
	"encoding/json"
	"net/http"

	"github.com/userhub/backend/internal/models"
)

// WriteError writes a JSON error body with the given status code
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Status: "error", Message: message})
}
