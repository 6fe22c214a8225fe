package middlewares

import (
	"net/http"
)

// RequestSizeLimitMiddleware caps request bodies at maxBytes. Bodies that
// declare a larger Content-Length are refused up front; the rest are read
// through http.MaxBytesReader so handlers see *http.MaxBytesError.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Connection", "close")
				http.Error(w, "File is too large.", http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
