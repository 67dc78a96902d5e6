package middleware

import (
	"net/http"
	"strings"

	apperrors "printhub/pkg/errors"
)

// MaxRequestSize caps request bodies at limit bytes. Multipart uploads get
// uploadLimit instead.
func MaxRequestSize(limit, uploadLimit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			max := limit
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") && uploadLimit > 0 {
				max = uploadLimit
			}

			if r.ContentLength > max {
				reject(w, http.StatusRequestEntityTooLarge, apperrors.CodeInvalidInput, "Request body too large")
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, max)
			}
			next.ServeHTTP(w, r)
		})
	}
}
