// Package handler provides HTTP request handlers.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/penblog/penblog/internal/handler/dto"
	"github.com/penblog/penblog/internal/middleware"
	"github.com/penblog/penblog/internal/service"
	"github.com/penblog/penblog/internal/validation"
)

// Version is reported by the index endpoint.
const Version = "1.0.0"

// Handler serves the endpoints that need no dependencies.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Hello describes the API.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"message": "Welcome to the penblog API",
		"version": Version,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: message, Code: code})
}

// decodeJSON reads a request body into v, answering 400 or 413 itself
// when it cannot.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return false
		}
		if errors.Is(err, dto.ErrInvalidTags) {
			writeJSON(w, r, http.StatusBadRequest, dto.ErrorResponse{
				Error:  dto.ErrInvalidTags.Error(),
				Code:   "VALIDATION_ERROR",
				Fields: validation.Single("tags", dto.ErrInvalidTags.Error()).Fields,
			})
			return false
		}
		writeError(w, r, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		resp := dto.ErrorResponse{Error: "Validation failed", Code: "VALIDATION_ERROR"}
		var fe *validation.FieldErrors
		if errors.As(err, &fe) {
			resp.Error = fe.Error()
			resp.Fields = fe.Fields
		}
		writeJSON(w, r, http.StatusBadRequest, resp)
	case errors.Is(err, service.ErrInvalidID):
		writeError(w, r, http.StatusBadRequest, "INVALID_ID", "Article id is not valid")
	case errors.Is(err, service.ErrInvalidState):
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "state must be draft or published")
	case errors.Is(err, service.ErrInvalidSort):
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
	case errors.Is(err, service.ErrStateRequiresAuth):
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required to filter by state")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "You are not the author of this article")
	case errors.Is(err, service.ErrArticleNotPublished):
		writeError(w, r, http.StatusForbidden, "FORBIDDEN", "Article is not published")
	case errors.Is(err, service.ErrArticleNotFound):
		writeError(w, r, http.StatusNotFound, "ARTICLE_NOT_FOUND", "Article not found")
	case errors.Is(err, service.ErrTitleExists):
		writeError(w, r, http.StatusConflict, "TITLE_TAKEN", "An article with this title already exists")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, r, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
	default:
		logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
