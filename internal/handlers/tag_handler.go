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

// TagService is the interface that wraps methods for tag business logic.
type TagService interface {
	// Method List returns every tag.
	List(ctx context.Context) ([]models.Tag, error)
	// Method Create stores a new tag with a unique name.
	Create(ctx context.Context, req *models.TagCreateRequest) (*models.Tag, error)
	// Method GetPosts returns one page of the posts carrying the tag.
	GetPosts(ctx context.Context, id, page, perPage int) (*models.PostListResult, error)
	// Method Delete removes a tag.
	Delete(ctx context.Context, id int) error
}

// TagHandler handles tag-related HTTP requests
type TagHandler struct {
	BaseHandler
	tagService TagService
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		BaseHandler: BaseHandler{Logger: logger},
		tagService:  tagService,
	}
}

// RegisterRoutes registers all tag handler routes
func (h *TagHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.GetPosts)
		r.With(requireAuth).Post("/", h.Create)
		r.With(requireAuth).Delete("/{id}", h.Delete)
	})
}

// List handles GET /tags
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "tags retrieved", tags)
}

// Create handles POST /tags
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TagCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.tagService.Create(r.Context(), &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "tag created", tag)
}

// GetPosts handles GET /tags/{id}
func (h *TagHandler) GetPosts(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	page, perPage := parsePagination(r)
	result, err := h.tagService.GetPosts(r.Context(), id, page, perPage)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "posts retrieved", result)
}

// Delete handles DELETE /tags/{id}
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	if err := h.tagService.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "tag deleted", nil)
}
