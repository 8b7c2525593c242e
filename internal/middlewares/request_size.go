package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestSizeLimitMiddleware caps request bodies at maxRequestSize bytes.
// A declared Content-Length over the cap is answered with 413 before the handler runs;
// a streamed body is cut off by chi's RequestSize and surfaces to the handler as *http.MaxBytesError.
func RequestSizeLimitMiddleware(maxRequestSize int64) func(http.Handler) http.Handler {
	limit := middleware.RequestSize(maxRequestSize)
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxRequestSize {
				WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}
