package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// settingRepository provides access to the settings key-value table
type settingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *sql.DB, logger *zap.Logger) *settingRepository {
	return &settingRepository{
		db:     db,
		logger: logger,
	}
}

// GetAll retrieves every setting as a flat key to value map
func (r *settingRepository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT `key`, `value` FROM settings")
	if err != nil {
		r.logger.Error("failed to query settings", zap.Error(err))
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			r.logger.Error("failed to scan setting", zap.Error(err))
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return settings, nil
}

// Get retrieves a single setting value
func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		"SELECT `value` FROM settings WHERE `key` = ? LIMIT 1", key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get setting", zap.Error(err), zap.String("key", key))
		return "", fmt.Errorf("failed to get setting: %w", err)
	}

	return value, nil
}

// Set upserts a setting in a single statement. REPLACE INTO is atomic, so
// concurrent writers of the same key cannot interleave a read-modify-write.
func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		"REPLACE INTO settings (`key`, `value`) VALUES (?, ?)", key, value)
	if err != nil {
		r.logger.Error("failed to set setting", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to set setting: %w", err)
	}

	return nil
}
