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

// userRepository provides access to the users table
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, avatar, is_admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.Avatar, user.IsAdmin, now, now)
	if err != nil {
		if isDuplicateErr(err) {
			return fmt.Errorf("username %q: %w", user.Username, ErrDuplicateEntry)
		}
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, avatar, is_admin, created_at, updated_at
		FROM users
		WHERE username = ?
		LIMIT 1
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Avatar,
		&user.IsAdmin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get user by username", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// ExistsByUsername checks if a user exists with the given username
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE username = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, username).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check username existence", zap.Error(err), zap.String("username", username))
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

// Count returns the number of registered users
func (r *userRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM users`

	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		r.logger.Error("failed to count users", zap.Error(err))
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// List retrieves all users ordered by id
func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, username, password_hash, avatar, is_admin, created_at, updated_at
		FROM users
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to query users", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.Avatar,
			&user.IsAdmin,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// Update applies a partial update to a user. Only columns present in the
// patch are touched; updated_at always advances.
func (r *userRepository) Update(ctx context.Context, username string, patch *models.UserPatch) error {
	setClauses := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if patch.PasswordHash != nil {
		setClauses = append(setClauses, "password_hash = ?")
		args = append(args, *patch.PasswordHash)
	}
	if patch.AvatarSet {
		// A nil avatar in a present patch clears the column
		setClauses = append(setClauses, "avatar = ?")
		args = append(args, patch.Avatar)
	}
	if patch.IsAdmin != nil {
		setClauses = append(setClauses, "is_admin = ?")
		args = append(args, *patch.IsAdmin)
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE username = ?`, strings.Join(setClauses, ", "))
	args = append(args, username)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update user", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// Delete removes a user by username
func (r *userRepository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM users WHERE username = ?`

	result, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %q: %w", username, ErrNotFound)
	}

	return nil
}
