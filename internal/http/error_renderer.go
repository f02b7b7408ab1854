package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/inkpost/inkpost/internal/errors"
)

// statusForError maps application error codes onto HTTP status codes.
func statusForError(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodePermissionDenied:
		return http.StatusForbidden
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorTitle returns the page heading for an HTTP status.
func errorTitle(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Not Found"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusBadRequest:
		return "Bad Request"
	case http.StatusConflict:
		return "Conflict"
	default:
		return "Something Went Wrong"
	}
}

// errorMessage picks the user-facing message. Only the AppError message is
// shown; the wrapped cause never reaches the page.
func errorMessage(err error, status int) string {
	if status < http.StatusInternalServerError {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Message != "" {
			return appErr.Message
		}
	}
	return "An unexpected error occurred. Please try again."
}

// RenderAppError writes an error page for the given application error.
func (h *PostHandlers) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	data := &ErrorData{
		Status:  status,
		Title:   errorTitle(status),
		Message: errorMessage(err, status),
	}
	if renderErr := h.Renderer.RenderError(w, status, data); renderErr != nil {
		http.Error(w, data.Message, status)
	}
}
