package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

// CategoryService is the interface that wraps methods for category business logic.
type CategoryService interface {
	// Method List returns every category.
	List(ctx context.Context) ([]models.Category, error)
	// Method Create stores a new category with a unique name.
	Create(ctx context.Context, req *models.CategoryCreateRequest) (*models.Category, error)
	// Method GetPosts returns one page of the posts filed under the category.
	GetPosts(ctx context.Context, id, page, perPage int) (*models.PostListResult, error)
	// Method Delete removes a category.
	Delete(ctx context.Context, id int) error
}

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	BaseHandler
	categoryService CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		BaseHandler:     BaseHandler{Logger: logger},
		categoryService: categoryService,
	}
}

// RegisterRoutes registers all category handler routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.GetPosts)
		r.With(requireAuth).Post("/", h.Create)
		r.With(requireAuth).Delete("/{id}", h.Delete)
	})
}

// List handles GET /categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "categories retrieved", categories)
}

// Create handles POST /categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.categoryService.Create(r.Context(), &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "category created", category)
}

// GetPosts handles GET /categories/{id}
func (h *CategoryHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	page, perPage := parsePagination(r)
	result, err := h.categoryService.GetPosts(r.Context(), id, page, perPage)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "posts retrieved", result)
}

// Delete handles DELETE /categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "category deleted", nil)
}
