package storage

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	apperrors "printhub/pkg/errors"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

var PublicRoutes = []middleware.PublicRoute{
	{Method: http.MethodGet, Prefix: FilesRoute},
}

// FilesHandler serves objects behind signed URLs. The token is the credential,
// so the route is registered as public.
type FilesHandler struct {
	store  Store
	signer URLSigner
	log    *logger.Logger
}

func NewFilesHandler(store Store, signer URLSigner, log *logger.Logger) *FilesHandler {
	return &FilesHandler{
		store:  store,
		signer: signer,
		log:    log,
	}
}

func (h *FilesHandler) Serve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bucket, objectPath, err := h.signer.Resolve(ps.ByName("token"))
	if err != nil {
		h.writeError(w, "Serve", resolveError(err))
		return
	}

	body, obj, err := h.store.Open(r.Context(), bucket, objectPath)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			h.writeError(w, "Serve", apperrors.Gone("File has expired or was removed"))
			return
		}
		h.log.Error("failed to open object", "bucket", bucket, "path", objectPath, "error", err)
		h.writeError(w, "Serve", apperrors.Internal("failed to open file", err))
		return
	}
	defer body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": path.Base(objectPath)}))
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.log.Warn("file stream interrupted", "bucket", bucket, "path", objectPath, "error", err)
	}
}

func resolveError(err error) error {
	switch {
	case errors.Is(err, ErrURLExpired):
		return apperrors.Gone("This link has expired")
	case errors.Is(err, ErrInvalidURL):
		return apperrors.NotFound("File")
	default:
		return apperrors.Internal("failed to resolve file link", err)
	}
}

func (h *FilesHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "FilesHandler", "operation", op, "error", writeErr)
	}
}

func (h *FilesHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(FilesRoute+":token", h.Serve)
}
