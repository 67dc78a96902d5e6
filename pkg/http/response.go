package http

import (
	"encoding/json"
	"net/http"

	apperrors "printhub/pkg/errors"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data any `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       any   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError renders err as an ErrorResponse. Errors that are not AppErrors
// are reported as a generic 500 so internals never leak to callers.
func WriteError(w http.ResponseWriter, err error) error {
	if !apperrors.IsAppError(err) {
		return WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  apperrors.CodeInternal,
		})
	}

	appErr := apperrors.AsAppError(err)
	message := appErr.Message
	if appErr.Code == apperrors.CodeInternal {
		message = "Internal server error"
	}
	return WriteJSON(w, appErr.StatusCode(), ErrorResponse{
		Error:   message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: message,
		Code:  apperrors.CodeInvalidInput,
	})
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

func WriteNoContent(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func WritePaginated(w http.ResponseWriter, data any, totalCount int64, limit int, offset int64) error {
	return WriteJSON(w, http.StatusOK, PaginatedResponse{
		Data:       data,
		TotalCount: totalCount,
		Limit:      limit,
		Offset:     offset,
	})
}
