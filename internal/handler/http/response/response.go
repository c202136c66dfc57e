package response

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/i18n"
)

type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
	Meta    *Meta        `json:"meta,omitempty"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type Meta struct {
	Total int `json:"total"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fallback := Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "ENCODING_ERROR",
				Message: "Failed to encode response",
			},
		}
		_ = json.NewEncoder(w).Encode(fallback)
	}
}

// Success responses
func Success(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func SuccessWithMessage(w http.ResponseWriter, r *http.Request, messageID, fallback string, data interface{}) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: i18n.Translate(r.Context(), messageID, fallback, nil),
		Data:    data,
	})
}

func Created(w http.ResponseWriter, r *http.Request, messageID, fallback string, data interface{}) {
	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: i18n.Translate(r.Context(), messageID, fallback, nil),
		Data:    data,
	})
}

// List writes a slice with its length in meta.
func List[T any](w http.ResponseWriter, items []T) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: len(items)},
	})
}

// Error responses

// Error writes an error envelope. The message is looked up under code in
// the request locale.
func Error(w http.ResponseWriter, r *http.Request, status int, code, fallback string, details map[string]any) {
	writeError(w, r, status, code, code, fallback, details, nil)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, messageID, fallback string, details, templateData map[string]any) {
	writeJSON(w, status, Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: i18n.Translate(r.Context(), messageID, fallback, templateData),
			Details: details,
		},
	})
}

func BadRequest(w http.ResponseWriter, r *http.Request, message string, details map[string]any) {
	Error(w, r, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func ValidationError(w http.ResponseWriter, r *http.Request, details map[string]string) {
	fields := make(map[string]any, len(details))
	for k, v := range details {
		fields[k] = v
	}
	Error(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Validation failed", fields)
}

func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func NotFound(w http.ResponseWriter, r *http.Request, messageID, message string) {
	writeError(w, r, http.StatusNotFound, "NOT_FOUND", messageID, message, nil, nil)
}

func InternalServerError(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred", nil)
}

func Conflict(w http.ResponseWriter, r *http.Request, code, message string) {
	Error(w, r, http.StatusConflict, code, message, nil)
}
