package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"printhub/internal/printjobs/service"
	apperrors "printhub/pkg/errors"
	httputil "printhub/pkg/http"
	"printhub/pkg/logger"
	"printhub/pkg/model"
)

const uploadMemory = 8 << 20

type PrintJobHandler struct {
	service service.PrintJobService
	log     *logger.Logger
}

func NewPrintJobHandler(service service.PrintJobService, log *logger.Logger) *PrintJobHandler {
	return &PrintJobHandler{
		service: service,
		log:     log,
	}
}

type bulkPrintRequest struct {
	IDs []string `json:"ids"`
}

func (h *PrintJobHandler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "Upload", err)
		return
	}

	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		h.writeError(w, "Upload", apperrors.InvalidInput("Expected a multipart form with a file field"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Upload", apperrors.InvalidInput("file is required"))
		return
	}
	defer file.Close()

	uploaded, err := h.service.Upload(r.Context(), caller, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.writeError(w, "Upload", err)
		return
	}

	if err := httputil.WriteCreated(w, uploaded); err != nil {
		h.log.Error("failed to write success response", "handler", "Upload", "operation", "WriteCreated", "error", err)
	}
}

func (h *PrintJobHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var job model.PrintJob
	if err := httputil.DecodeJSON(r, &job); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.service.Create(r.Context(), caller, &job); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, job); err != nil {
		h.log.Error("failed to write success response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// List serves the shop's queue to owners and the caller's own jobs to customers.
func (h *PrintJobHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	status := model.JobStatus(r.URL.Query().Get("status"))

	if !caller.IsShopOwner() {
		jobs, err := h.service.ListByCustomer(r.Context(), caller.UserID, status)
		if err != nil {
			h.writeError(w, "List", err)
			return
		}
		if err := httputil.WriteSuccess(w, jobs); err != nil {
			h.log.Error("failed to write success response", "handler", "List", "operation", "WriteSuccess", "error", err)
		}
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	jobs, total, err := h.service.ListByShop(r.Context(), caller.UserID, status, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, jobs, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *PrintJobHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	job, err := h.service.GetByID(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, job); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PrintJobHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	var req model.StatusUpdate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	job, err := h.service.UpdateStatus(r.Context(), caller.UserID, ps.ByName("id"), req.Status)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, job); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PrintJobHandler) DirectPrint(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "DirectPrint", err)
		return
	}

	result, err := h.service.DirectPrint(r.Context(), caller.UserID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "DirectPrint", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "DirectPrint", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PrintJobHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "BulkUpdateStatus", err)
		return
	}

	var req model.BulkStatusUpdate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "BulkUpdateStatus", err)
		return
	}

	result, err := h.service.BulkUpdateStatus(r.Context(), caller.UserID, &req)
	if err != nil {
		h.writeError(w, "BulkUpdateStatus", err)
		return
	}
	h.writeBulk(w, "BulkUpdateStatus", result)
}

func (h *PrintJobHandler) BulkDirectPrint(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "BulkDirectPrint", err)
		return
	}

	var req bulkPrintRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "BulkDirectPrint", err)
		return
	}

	result, err := h.service.BulkDirectPrint(r.Context(), caller.UserID, req.IDs)
	if err != nil {
		h.writeError(w, "BulkDirectPrint", err)
		return
	}
	h.writeBulk(w, "BulkDirectPrint", result)
}

// writeBulk answers 200 when every item went through and 207 otherwise.
func (h *PrintJobHandler) writeBulk(w http.ResponseWriter, op string, result *model.BulkResult) {
	if len(result.Failed) > 0 {
		appErr := apperrors.PartialFailure(len(result.Succeeded), len(result.Failed), result.Failed)
		appErr.Details["succeeded_ids"] = result.Succeeded
		if len(result.URLs) > 0 {
			appErr.Details["urls"] = result.URLs
		}
		h.writeError(w, op, appErr)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", op, "operation", "WriteSuccess", "error", err)
	}
}

func (h *PrintJobHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	job, err := h.service.Cancel(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, job); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PrintJobHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.ShopOwner(r)
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := h.service.Delete(r.Context(), caller, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PrintJobHandler) FileURL(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "FileURL", err)
		return
	}

	url, err := h.service.FileURL(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "FileURL", err)
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"url": url}); err != nil {
		h.log.Error("failed to write success response", "handler", "FileURL", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PrintJobHandler) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, err := httputil.Caller(r)
	if err != nil {
		h.writeError(w, "Summary", err)
		return
	}

	summary, err := h.service.CustomerSummary(r.Context(), caller.UserID)
	if err != nil {
		h.writeError(w, "Summary", err)
		return
	}

	if err := httputil.WriteSuccess(w, summary); err != nil {
		h.log.Error("failed to write success response", "handler", "Summary", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PrintJobHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PrintJobHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/uploads", h.Upload)
	router.POST("/api/v1/print-jobs", h.Create)
	router.GET("/api/v1/print-jobs", h.List)
	router.GET("/api/v1/print-jobs/summary", h.Summary)
	router.POST("/api/v1/print-jobs/bulk/status", h.BulkUpdateStatus)
	router.POST("/api/v1/print-jobs/bulk/print", h.BulkDirectPrint)
	router.GET("/api/v1/print-jobs/id/:id", h.GetByID)
	router.DELETE("/api/v1/print-jobs/id/:id", h.Delete)
	router.PATCH("/api/v1/print-jobs/id/:id/status", h.UpdateStatus)
	router.POST("/api/v1/print-jobs/id/:id/print", h.DirectPrint)
	router.POST("/api/v1/print-jobs/id/:id/cancel", h.Cancel)
	router.GET("/api/v1/print-jobs/id/:id/file", h.FileURL)
}
