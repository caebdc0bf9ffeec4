package handler

import (
	"crm-rep/internal/api/handler/dto"
	"crm-rep/internal/api/middleware"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/user"
	"crm-rep/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, message, field := http.StatusInternalServerError, "An unexpected error occurred.", ""
	var fields map[string][]string
	var fieldErrors apperrors.FieldErrors
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &fieldErrors):
		status, message = http.StatusBadRequest, "Validation failed."
		fields = make(map[string][]string, len(fieldErrors))
		for _, fe := range fieldErrors {
			fields[fe.Field] = append(fields[fe.Field], fe.Message)
		}
	case errors.Is(err, user.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "No active account found with the given credentials."
	case errors.Is(err, middleware.ErrInvalidToken), errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Token is invalid or expired."
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, customer.ErrNotFound), errors.Is(err, user.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	respondJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Message: message,
			Field:   field,
			Fields:  fields,
		},
	})
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
}
