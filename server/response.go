package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sky-flux/flashcards"
	"github.com/sky-flux/flashcards/store"
	"github.com/sky-flux/flashcards/wanikani"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// SuccessResponse represents a successful API response with data.
type SuccessResponse struct {
	Data any `json:"data"`
}

// IDResponse is the body of a successful create.
type IDResponse struct {
	ID string `json:"id"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// Created writes a 201 Created response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

// BadRequest writes a 400 Bad Request response.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}

// InternalError writes a 500 Internal Server Error response. The cause is
// logged, not returned to the client.
func InternalError(w http.ResponseWriter, log *slog.Logger, err error) {
	log.Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, errors.New("internal server error"))
}

// Fail writes the response matching err's kind.
func Fail(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFound(w, err)
	case errors.Is(err, store.ErrInvalid),
		errors.Is(err, store.ErrTypeMismatch),
		errors.Is(err, store.ErrNotCustom),
		errors.Is(err, store.ErrUnknownSource),
		errors.Is(err, flashcards.ErrInvalidSourceType),
		errors.Is(err, wanikani.ErrNoCredentials):
		BadRequest(w, err)
	case errors.Is(err, wanikani.ErrRateLimited):
		Error(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, wanikani.ErrStatus):
		Error(w, http.StatusBadGateway, err)
	default:
		InternalError(w, log, err)
	}
}
