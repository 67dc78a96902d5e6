package middleware

import (
	"mime"
	"net/http"
	"slices"

	apperrors "printhub/pkg/errors"
	"printhub/pkg/logger"
)

const ContentTypeJSON = "application/json"

// ContentTypeValidation requires a JSON body on POST/PUT/PATCH requests that
// carry one. Extra media types (multipart uploads) can be allowed explicitly.
func ContentTypeValidation(log *logger.Logger, extra ...string) func(http.Handler) http.Handler {
	allowed := append([]string{ContentTypeJSON}, extra...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r) {
				contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if !slices.Contains(allowed, contentType) {
					log.Warn("Invalid Content-Type header",
						"request_id", RequestIDFrom(r.Context()),
						"content_type", contentType,
						"path", r.URL.Path,
						"method", r.Method,
					)
					reject(w, http.StatusUnsupportedMediaType, apperrors.CodeInvalidInput, "Content-Type must be application/json")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	default:
		return false
	}
}
