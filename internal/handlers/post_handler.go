package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/moblog/backend/internal/middleware"
	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

// PostService is the interface that wraps methods for post business logic.
type PostService interface {
	// Method List returns one page of posts with the total count.
	List(ctx context.Context, page, perPage int) (*models.PostListResult, error)
	// Method Get returns one post's projection.
	Get(ctx context.Context, id int) (*models.PostInfo, error)
	// Method Create stores a new post for the author.
	Create(ctx context.Context, author *models.User, req *models.PostCreateRequest) (*models.PostInfo, error)
	// Method Update applies a partial update and returns the fresh projection.
	Update(ctx context.Context, id int, req *models.PostUpdateRequest) (*models.PostInfo, error)
	// Method Delete removes a post.
	Delete(ctx context.Context, id int) error
}

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	BaseHandler
	postService PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		BaseHandler: BaseHandler{Logger: logger},
		postService: postService,
	}
}

// RegisterRoutes registers all post handler routes
func (h *PostHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.With(requireAuth).Post("/", h.Create)
		r.With(requireAuth).Put("/{id}", h.Update)
		r.With(requireAuth).Delete("/{id}", h.Delete)
	})
}

// List handles GET /posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePagination(r)

	result, err := h.postService.List(r.Context(), page, perPage)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "posts retrieved", result)
}

// Get handles GET /posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "post retrieved", post)
}

// Create handles POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.PostCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), caller, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "post created", post)
}

// Update handles PUT /posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req models.PostUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.postService.Update(r.Context(), id, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "post updated", post)
}

// Delete handles DELETE /posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := h.postService.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "post deleted", nil)
}
