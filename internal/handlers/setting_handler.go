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

// SettingService is the interface that wraps methods for site settings logic.
type SettingService interface {
	// Method GetAll returns every setting as a flat map.
	GetAll(ctx context.Context) (map[string]string, error)
	// Method Set upserts one key.
	Set(ctx context.Context, req *models.SettingSetRequest) error
	// Method IsInit reports whether the defaults have been seeded.
	IsInit(ctx context.Context) (bool, error)
	// Method Reinit forces the defaults back.
	Reinit(ctx context.Context) error
}

// SettingHandler handles settings-related HTTP requests
type SettingHandler struct {
	BaseHandler
	settingService SettingService
}

// NewSettingHandler creates a new setting handler
func NewSettingHandler(settingService SettingService, logger *zap.Logger) *SettingHandler {
	return &SettingHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		settingService: settingService,
	}
}

// RegisterRoutes registers all setting handler routes
func (h *SettingHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/setting", func(r chi.Router) {
		r.Get("/get_all", h.GetAll)
		r.Get("/is_init", h.IsInit)
		r.With(requireAuth).Post("/set", h.Set)
		r.With(requireAuth).Get("/init", h.Init)
	})
}

// GetAll handles GET /setting/get_all
func (h *SettingHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingService.GetAll(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "settings retrieved", settings)
}

// Set handles POST /setting/set
func (h *SettingHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req models.SettingSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settingService.Set(r.Context(), &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "setting saved", nil)
}

// Init handles GET /setting/init. Admin only.
func (h *SettingHandler) Init(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !caller.IsAdmin {
		h.RespondError(w, http.StatusForbidden, "no permission")
		return
	}

	if err := h.settingService.Reinit(r.Context()); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "settings initialized", nil)
}

// IsInit handles GET /setting/is_init
func (h *SettingHandler) IsInit(w http.ResponseWriter, r *http.Request) {
	seeded, err := h.settingService.IsInit(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.RespondOK(w, "init status retrieved", seeded)
}
