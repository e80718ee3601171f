package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"pdf-annotator/internal/domain"
	apperrors "pdf-annotator/pkg/errors"
)

// writeError writes an error response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeAppError converts err to a single user-facing message and logs it
// once: server faults at error level, client mistakes at debug.
func writeAppError(w http.ResponseWriter, logger domain.Logger, err error, fields ...interface{}) {
	appErr := toAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.Error(appErr.Message, err, fields...)
	} else {
		logger.Debug(appErr.Message, append(fields, "error", err)...)
	}
	writeError(w, appErr.StatusCode, appErr.Message)
}

func toAppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}

	var vErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return apperrors.NewNotFoundError("Session not found")
	case errors.Is(err, domain.ErrAnnotationNotFound):
		return apperrors.NewNotFoundError("Annotation not found")
	case errors.Is(err, domain.ErrPadNotFound):
		return apperrors.NewNotFoundError("Signature pad not found")
	case errors.Is(err, domain.ErrNoDocument):
		return apperrors.NewValidationError("No PDF loaded. Please upload a PDF first.")
	case errors.Is(err, domain.ErrPageOutOfRange):
		return apperrors.NewValidationError("Page out of range")
	case errors.Is(err, domain.ErrNoPendingPlacement):
		return apperrors.NewValidationError("Click on the page to choose where to place it first.")
	case errors.Is(err, domain.ErrEmptyComment):
		return apperrors.NewValidationError("Comment cannot be empty")
	case errors.Is(err, domain.ErrInvalidSignature):
		return apperrors.NewValidationError("Invalid signature image")
	case errors.Is(err, domain.ErrDocumentReleased):
		return apperrors.NewConflictError("The document changed while rendering. Please try again.", err)
	case errors.Is(err, domain.ErrPadClosed):
		return apperrors.NewValidationError("Signature pad is already closed")
	case errors.Is(err, domain.ErrUnsupportedExport):
		return apperrors.NewValidationError("Unsupported export mode. Use none or embed.")
	case errors.Is(err, domain.ErrInvalidColor),
		errors.Is(err, domain.ErrInvalidTool),
		errors.Is(err, domain.ErrInvalidIntent):
		return apperrors.NewValidationError(err.Error())
	case errors.As(err, &vErr):
		return apperrors.NewValidationError(vErr.Error())
	case errors.Is(err, domain.ErrRenderUnsupported):
		return &apperrors.AppError{
			Type:       apperrors.ErrorTypeProcessing,
			Message:    "Page images are not available with the configured renderer",
			StatusCode: http.StatusNotImplemented,
			Cause:      err,
		}
	}
	return apperrors.NewInternalError("Something went wrong. Please try again.", err)
}
