package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

// defaultSettings are the site settings seeded on first startup and on an
// explicit re-init. The init marker itself is written last.
var defaultSettings = map[string]string{
	"site_title":       "My Blog",
	"site_description": "Just another blog",
	"site_keywords":    "blog",
	"site_logo":        "",
}

// SettingRepository is the interface that wraps methods for Settings table data access
type SettingRepository interface {
	// Method GetAll retrieves every setting as a flat map.
	GetAll(ctx context.Context) (map[string]string, error)
	// Method Get retrieves one setting value.
	//
	// If the key is absent, the returned error wraps repositories.ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Method Set upserts one key atomically.
	Set(ctx context.Context, key, value string) error
}

// settingService implements the key-value site settings store
type settingService struct {
	settingRepo SettingRepository
	logger      *zap.Logger
}

// NewSettingService creates a new setting service
func NewSettingService(settingRepo SettingRepository, logger *zap.Logger) *settingService {
	return &settingService{
		settingRepo: settingRepo,
		logger:      logger,
	}
}

// GetAll returns every setting, init marker included
func (s *settingService) GetAll(ctx context.Context) (map[string]string, error) {
	return s.settingRepo.GetAll(ctx)
}

// Set upserts a single key. The init marker is managed by seeding only.
func (s *settingService) Set(ctx context.Context, req *models.SettingSetRequest) error {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return fmt.Errorf("setting key cannot be empty: %w", ErrInvalidInput)
	}
	if key == models.InitSettingKey {
		return fmt.Errorf("setting key %q is reserved: %w", models.InitSettingKey, ErrInvalidInput)
	}

	return s.settingRepo.Set(ctx, key, req.Value)
}

// IsInit reports whether the defaults have been seeded
func (s *settingService) IsInit(ctx context.Context) (bool, error) {
	value, err := s.settingRepo.Get(ctx, models.InitSettingKey)
	if err != nil {
		if isRepoNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return value == "y", nil
}

// Reinit forces the defaults back regardless of the current marker
func (s *settingService) Reinit(ctx context.Context) error {
	if err := s.settingRepo.Set(ctx, models.InitSettingKey, "n"); err != nil {
		return err
	}
	return s.seed(ctx)
}

// EnsureSeeded seeds the defaults unless the marker already says "y".
// Safe to call on every startup.
func (s *settingService) EnsureSeeded(ctx context.Context) error {
	seeded, err := s.IsInit(ctx)
	if err != nil {
		return err
	}
	if seeded {
		return nil
	}
	return s.seed(ctx)
}

// seed writes the defaults and flips the init marker last, so a crash
// mid-seed leaves the store marked unseeded
func (s *settingService) seed(ctx context.Context) error {
	for key, value := range defaultSettings {
		if err := s.settingRepo.Set(ctx, key, value); err != nil {
			return err
		}
	}
	if err := s.settingRepo.Set(ctx, models.InitSettingKey, "y"); err != nil {
		return err
	}

	s.logger.Info("default settings seeded", zap.Int("keys", len(defaultSettings)))
	return nil
}
