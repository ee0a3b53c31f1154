package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/moblog/backend/internal/middleware"
	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user business logic.
type UserService interface {
	// Method Register performs credentials validation and account creation and returns a bearer token.
	//
	// "req" parameter contains username and password.
	//
	// If the username is taken, reserved or the password is too weak, the error will be returned together with an empty token.
	Register(ctx context.Context, req *models.RegisterRequest) (string, error)
	// Method Login performs a credentials check and returns a bearer token.
	//
	// If such user does not exist or the password does not match, the error will be returned together with an empty token.
	Login(ctx context.Context, req *models.LoginRequest) (string, error)
	// Method List returns the safe projection of every account.
	List(ctx context.Context) ([]models.UserInfo, error)
	// Method Get returns one account's safe projection.
	Get(ctx context.Context, target models.Identity, caller *models.User) (*models.UserInfo, error)
	// Method Update applies a partial update and returns the fresh projection.
	Update(ctx context.Context, caller *models.User, target models.Identity, req *models.UserUpdateRequest) (*models.UserInfo, error)
	// Method Delete removes an account.
	Delete(ctx context.Context, caller *models.User, target models.Identity) error
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes. The auth middlewares are
// injected so the handler stays free of token plumbing.
func (h *UserHandler) RegisterRoutes(r chi.Router, requireAuth, optionalAuth func(http.Handler) http.Handler) {
	r.Post("/login", h.Login)
	r.Route("/user", func(r chi.Router) {
		r.Post("/", h.Register)
		r.With(requireAuth).Get("/", h.List)
		r.With(optionalAuth).Get("/{id}", h.Get)
		r.With(requireAuth).Put("/{id}", h.Update)
		r.With(requireAuth).Delete("/{id}", h.Delete)
	})
}

// Register handles POST /user
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "user registered", map[string]string{"token": token})
}

// Login handles POST /login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "login successful", map[string]string{"token": token})
}

// List handles GET /user
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "users retrieved", users)
}

// Get handles GET /user/{id}. The id may be a username or the literal "me";
// "me" requires a bound caller while named users are public.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	target := models.ParseIdentity(chi.URLParam(r, "id"))
	caller, _ := middleware.GetCaller(r.Context())

	user, err := h.userService.Get(r.Context(), target, caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "user retrieved", user)
}

// Update handles PUT /user/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req models.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target := models.ParseIdentity(chi.URLParam(r, "id"))
	user, err := h.userService.Update(r.Context(), caller, target, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "user updated", user)
}

// Delete handles DELETE /user/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	target := models.ParseIdentity(chi.URLParam(r, "id"))
	if err := h.userService.Delete(r.Context(), caller, target); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "user deleted", nil)
}
