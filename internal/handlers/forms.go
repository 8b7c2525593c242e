package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/userhub/backend/internal/models"
	"github.com/userhub/backend/internal/services"
)

// ProfileImageField is the multipart field carrying a profile image
const ProfileImageField = "profileImage"

// maxFormMemory is the part of a multipart form kept in memory, the rest spills to temp files
const maxFormMemory = 4 << 20

var errMalformedBody = errors.New("malformed request body")

// requestError is a body problem the client can fix, answered with its status code
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

// bodyError converts a body decoding or parsing failure into a requestError
func bodyError(err error) *requestError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return &requestError{status: http.StatusRequestEntityTooLarge, message: "request body too large"}
	}
	return &requestError{status: http.StatusBadRequest, message: errMalformedBody.Error()}
}

// isJSON reports whether the request body is JSON
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// isMultipart reports whether the request body is a multipart form
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// decodeJSON decodes a JSON body into dst
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return bodyError(err)
	}
	return nil
}

// formValues wraps the values of a parsed urlencoded or multipart form
type formValues struct {
	values url.Values
}

// parseForm parses a multipart or urlencoded body
func parseForm(r *http.Request) (formValues, error) {
	var err error
	if isMultipart(r) {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return formValues{}, bodyError(err)
	}
	return formValues{values: r.PostForm}, nil
}

// get returns the first value of key or an empty string
func (f formValues) get(key string) string {
	return f.values.Get(key)
}

// optional returns a pointer to the value of key, or nil when the field was not sent
func (f formValues) optional(key string) *string {
	if _, ok := f.values[key]; !ok {
		return nil
	}
	value := f.values.Get(key)
	return &value
}

// optionalMobile returns the mobile number of key, or nil when the field was not sent
func (f formValues) optionalMobile(key string) *models.MobileNumber {
	value := f.optional(key)
	if value == nil {
		return nil
	}
	mobile := models.MobileNumber(*value)
	return &mobile
}

// imageFromForm returns the optional profile image of a parsed multipart request.
// An absent or empty file yields nil. The caller must close the returned file.
func imageFromForm(r *http.Request) (*services.ImageUpload, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}

	file, header, err := r.FormFile(ProfileImageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, &requestError{status: http.StatusBadRequest, message: fmt.Sprintf("failed to read %s", ProfileImageField)}
	}
	if header.Size == 0 {
		_ = file.Close()
		return nil, nil, nil
	}

	return &services.ImageUpload{File: file, Filename: header.Filename, Size: header.Size}, file, nil
}

// respondRequestError answers a requestError, falling back to the service error mapping
func (h *BaseHandler) respondRequestError(w http.ResponseWriter, err error, action string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		h.RespondError(w, reqErr.status, reqErr.message)
		return
	}
	h.RespondServiceError(w, err, action)
}
