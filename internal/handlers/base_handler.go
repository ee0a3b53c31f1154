package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/moblog/backend/internal/services"
	"go.uber.org/zap"
)

// Response is the uniform envelope wrapped around every API reply.
// Success is true exactly when the status code is 200.
type Response struct {
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Data       any    `json:"data"`
	StatusCode int    `json:"status_code"`
}

// BaseHandler carries the helpers shared by all HTTP handlers
type BaseHandler struct {
	Logger *zap.Logger
}

// Respond writes the envelope with the given status, message and payload
func (h *BaseHandler) Respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := Response{
		Message:    message,
		Success:    status == http.StatusOK,
		Data:       data,
		StatusCode: status,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondOK writes a 200 envelope
func (h *BaseHandler) RespondOK(w http.ResponseWriter, message string, data any) {
	h.Respond(w, http.StatusOK, message, data)
}

// RespondError writes an error envelope with a nil data field
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.Respond(w, status, message, nil)
}

// HandleServiceError maps the service error taxonomy onto HTTP status codes.
// Anything unrecognized becomes a 500 with a generic message.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrDuplicate):
		h.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		h.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		h.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		h.RespondError(w, http.StatusNotFound, err.Error())
	default:
		h.Logger.Error("unexpected service error", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parsePagination reads page and per_page query parameters. Missing or
// malformed values fall back to page 1 and the service default page size.
func parsePagination(r *http.Request) (int, int) {
	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = v
	}

	perPage := services.DefaultPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil {
		perPage = v
	}

	return page, perPage
}
