package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

// postInfoColumns is the projection shared by every post listing query.
// Author and category are joined by name; a dangling reference renders empty.
const postInfoColumns = `
	p.id, p.title, p.summary, p.content,
	COALESCE(c.name, '') AS category,
	COALESCE(u.username, '') AS author,
	p.created_at, p.updated_at
`

// postRepository provides access to the posts table and its tag relation
type postRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *sql.DB, logger *zap.Logger) *postRepository {
	return &postRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new post and its tag relations
func (r *postRepository) Create(ctx context.Context, post *models.Post, tagIDs []int) error {
	query := `
		INSERT INTO posts (title, summary, content, author_id, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		post.Title, post.Summary, post.Content, post.AuthorID, post.CategoryID, now, now)
	if err != nil {
		r.logger.Error("failed to create post", zap.Error(err))
		return fmt.Errorf("failed to create post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	post.ID = int(id)
	post.CreatedAt = now
	post.UpdatedAt = now

	return r.insertTagRelations(ctx, post.ID, tagIDs)
}

// GetByID retrieves a raw post row by id
func (r *postRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	query := `
		SELECT id, title, summary, content, author_id, category_id, created_at, updated_at
		FROM posts
		WHERE id = ?
		LIMIT 1
	`

	post := &models.Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.Title,
		&post.Summary,
		&post.Content,
		&post.AuthorID,
		&post.CategoryID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get post", zap.Error(err), zap.Int("post_id", id))
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// GetInfoByID retrieves the client projection of a post, tags included
func (r *postRepository) GetInfoByID(ctx context.Context, id int) (*models.PostInfo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.id = ?
		LIMIT 1
	`, postInfoColumns)

	info, err := r.scanPostInfo(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get post info", zap.Error(err), zap.Int("post_id", id))
		return nil, fmt.Errorf("failed to get post info: %w", err)
	}

	tags, err := r.tagsForPosts(ctx, []int{info.ID})
	if err != nil {
		return nil, err
	}
	if names, ok := tags[info.ID]; ok {
		info.Tags = names
	}

	return info, nil
}

// List retrieves one page of posts ordered by creation (id) order
func (r *postRepository) List(ctx context.Context, page, perPage int) ([]models.PostInfo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN users u ON u.id = p.author_id
		ORDER BY p.id
		LIMIT ? OFFSET ?
	`, postInfoColumns)

	offset := (page - 1) * perPage
	return r.queryPostInfos(ctx, query, perPage, offset)
}

// Count returns the total number of posts
func (r *postRepository) Count(ctx context.Context) (int, error) {
	return r.countQuery(ctx, `SELECT COUNT(*) FROM posts`)
}

// ListByTag retrieves one page of the posts carrying a tag
func (r *postRepository) ListByTag(ctx context.Context, tagID, page, perPage int) ([]models.PostInfo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN users u ON u.id = p.author_id
		WHERE pt.tag_id = ?
		ORDER BY p.id
		LIMIT ? OFFSET ?
	`, postInfoColumns)

	offset := (page - 1) * perPage
	return r.queryPostInfos(ctx, query, tagID, perPage, offset)
}

// CountByTag returns the number of posts carrying a tag
func (r *postRepository) CountByTag(ctx context.Context, tagID int) (int, error) {
	return r.countQuery(ctx, `SELECT COUNT(*) FROM post_tags WHERE tag_id = ?`, tagID)
}

// ListByCategory retrieves one page of the posts in a category
func (r *postRepository) ListByCategory(ctx context.Context, categoryID, page, perPage int) ([]models.PostInfo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM posts p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.category_id = ?
		ORDER BY p.id
		LIMIT ? OFFSET ?
	`, postInfoColumns)

	offset := (page - 1) * perPage
	return r.queryPostInfos(ctx, query, categoryID, perPage, offset)
}

// CountByCategory returns the number of posts in a category
func (r *postRepository) CountByCategory(ctx context.Context, categoryID int) (int, error) {
	return r.countQuery(ctx, `SELECT COUNT(*) FROM posts WHERE category_id = ?`, categoryID)
}

// Update applies a partial update to a post. Only columns present in the
// patch are touched; updated_at always advances. Tag changes go through
// ReplaceTags.
func (r *postRepository) Update(ctx context.Context, id int, patch *models.PostUpdateRequest) error {
	setClauses := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if patch.Title != nil {
		setClauses = append(setClauses, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Summary != nil {
		setClauses = append(setClauses, "summary = ?")
		args = append(args, *patch.Summary)
	}
	if patch.Content != nil {
		setClauses = append(setClauses, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.CategoryID != nil {
		setClauses = append(setClauses, "category_id = ?")
		args = append(args, *patch.CategoryID)
	}

	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = ?`, strings.Join(setClauses, ", "))
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update post", zap.Error(err), zap.Int("post_id", id))
		return fmt.Errorf("failed to update post: %w", err)
	}

	return nil
}

// ReplaceTags swaps a post's tag set wholesale
func (r *postRepository) ReplaceTags(ctx context.Context, postID int, tagIDs []int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = ?`, postID); err != nil {
		r.logger.Error("failed to clear post tags", zap.Error(err), zap.Int("post_id", postID))
		return fmt.Errorf("failed to clear post tags: %w", err)
	}

	return r.insertTagRelations(ctx, postID, tagIDs)
}

// Delete removes a post; its tag relations cascade at the store level
func (r *postRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete post", zap.Error(err), zap.Int("post_id", id))
		return fmt.Errorf("failed to delete post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("post %d: %w", id, ErrNotFound)
	}

	return nil
}

// insertTagRelations adds join rows for the given tag ids
func (r *postRepository) insertTagRelations(ctx context.Context, postID int, tagIDs []int) error {
	for _, tagID := range tagIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)`, postID, tagID)
		if err != nil {
			r.logger.Error("failed to attach tag",
				zap.Error(err), zap.Int("post_id", postID), zap.Int("tag_id", tagID))
			return fmt.Errorf("failed to attach tag: %w", err)
		}
	}
	return nil
}

// queryPostInfos runs a postInfoColumns query and fills in the tag names
func (r *postRepository) queryPostInfos(ctx context.Context, query string, args ...any) ([]models.PostInfo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query posts", zap.Error(err))
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var infos []models.PostInfo
	var ids []int
	for rows.Next() {
		info, err := r.scanPostInfo(rows)
		if err != nil {
			r.logger.Error("failed to scan post", zap.Error(err))
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		infos = append(infos, *info)
		ids = append(ids, info.ID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	tags, err := r.tagsForPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		if names, ok := tags[infos[i].ID]; ok {
			infos[i].Tags = names
		}
	}

	return infos, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// scanPostInfo reads one postInfoColumns row
func (r *postRepository) scanPostInfo(row scanner) (*models.PostInfo, error) {
	var info models.PostInfo
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&info.ID,
		&info.Title,
		&info.Summary,
		&info.Content,
		&info.Category,
		&info.Author,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	info.Tags = []string{}
	info.CreatedAt = createdAt.Format(time.RFC3339)
	info.UpdatedAt = updatedAt.Format(time.RFC3339)
	return &info, nil
}

// tagsForPosts fetches tag names for a batch of posts in one query
func (r *postRepository) tagsForPosts(ctx context.Context, postIDs []int) (map[int][]string, error) {
	tags := make(map[int][]string, len(postIDs))
	if len(postIDs) == 0 {
		return tags, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(postIDs)), ",")
	query := fmt.Sprintf(`
		SELECT pt.post_id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (%s)
		ORDER BY pt.post_id, t.id
	`, placeholders)

	args := make([]any, len(postIDs))
	for i, id := range postIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query post tags", zap.Error(err))
		return nil, fmt.Errorf("failed to query post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID int
		var name string
		if err := rows.Scan(&postID, &name); err != nil {
			r.logger.Error("failed to scan post tag", zap.Error(err))
			return nil, fmt.Errorf("failed to scan post tag: %w", err)
		}
		tags[postID] = append(tags[postID], name)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tags, nil
}

// countQuery runs a single-value COUNT query
func (r *postRepository) countQuery(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("failed to count posts", zap.Error(err))
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}
