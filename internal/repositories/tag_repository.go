package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

// tagRepository provides access to the tags table
type tagRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *sql.DB, logger *zap.Logger) *tagRepository {
	return &tagRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new tag
func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	result, err := r.db.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, tag.Name)
	if err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("tag %q: %w", tag.Name, ErrDuplicateEntry)
		}
		r.logger.Error("failed to create tag", zap.Error(err))
		return fmt.Errorf("failed to create tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	tag.ID = int(id)
	return nil
}

// GetByID retrieves a tag by id
func (r *tagRepository) GetByID(ctx context.Context, id int) (*models.Tag, error) {
	tag := &models.Tag{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE id = ? LIMIT 1`, id).Scan(&tag.ID, &tag.Name)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get tag", zap.Error(err), zap.Int("tag_id", id))
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return tag, nil
}

// List retrieves all tags ordered by id
func (r *tagRepository) List(ctx context.Context) ([]models.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY id`)
	if err != nil {
		r.logger.Error("failed to query tags", zap.Error(err))
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			r.logger.Error("failed to scan tag", zap.Error(err))
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tags, nil
}

// GetIDsByNames resolves tag names to ids in input order. Every name must
// exist; a missing one yields ErrNotFound.
func (r *tagRepository) GetIDsByNames(ctx context.Context, names []string) ([]int, error) {
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	query := fmt.Sprintf(`SELECT id, name FROM tags WHERE name IN (%s)`, placeholders)

	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query tags by name", zap.Error(err))
		return nil, fmt.Errorf("failed to query tags by name: %w", err)
	}
	defer rows.Close()

	byName := make(map[string]int, len(names))
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			r.logger.Error("failed to scan tag", zap.Error(err))
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		byName[name] = id
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	ids := make([]int, 0, len(names))
	for _, name := range names {
		id, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("tag %q: %w", name, ErrNotFound)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Delete removes a tag; posts still carrying it merely lose the relation
func (r *tagRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete tag", zap.Error(err), zap.Int("tag_id", id))
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tag %d: %w", id, ErrNotFound)
	}

	return nil
}
