package storage

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateFileName generates a new file name based on the file extension
// It creates a UUID-based filename with the provided extension, lower-cased
func GenerateFileName(extension string) string {
	newUUID := uuid.New().String()
	extension = strings.ToLower(extension)
	// Ensure extension starts with a dot if it doesn't already
	if extension != "" && extension[0] != '.' {
		return newUUID + "." + extension
	}
	return newUUID + extension
}
