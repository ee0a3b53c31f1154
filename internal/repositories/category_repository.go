package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

// categoryRepository provides access to the categories table
type categoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB, logger *zap.Logger) *categoryRepository {
	return &categoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new category
func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	result, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, category.Name)
	if err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("category %q: %w", category.Name, ErrDuplicateEntry)
		}
		r.logger.Error("failed to create category", zap.Error(err))
		return fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	category.ID = int(id)
	return nil
}

// GetByID retrieves a category by id
func (r *categoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	category := &models.Category{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = ? LIMIT 1`, id).Scan(&category.ID, &category.Name)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get category", zap.Error(err), zap.Int("category_id", id))
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return category, nil
}

// List retrieves all categories ordered by id
func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		r.logger.Error("failed to query categories", zap.Error(err))
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			r.logger.Error("failed to scan category", zap.Error(err))
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

// Delete removes a category; posts that referenced it keep their row and
// render an empty category name
func (r *categoryRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete category", zap.Error(err), zap.Int("category_id", id))
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}

	return nil
}
