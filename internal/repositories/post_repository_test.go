package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/moblog/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupPostTestRepository creates a post repository with a mock database
func setupPostTestRepository(t *testing.T) (*postRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostRepository(db, zap.NewNop())

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func postInfoRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "summary", "content", "category", "author", "created_at", "updated_at"})
}

func TestPostRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupPostTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO posts`).
		WithArgs("Hello", "summary", "content", 1, 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`INSERT INTO post_tags`).
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO post_tags`).
		WithArgs(7, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	post := &models.Post{
		Title:      "Hello",
		Summary:    "summary",
		Content:    "content",
		AuthorID:   1,
		CategoryID: 2,
	}
	err := repo.Create(context.Background(), post, []int{3, 4})
	require.NoError(t, err)
	assert.Equal(t, 7, post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_List(t *testing.T) {
	repo, mock, cleanup := setupPostTestRepository(t)
	defer cleanup()

	now := time.Now().UTC()

	// page 2 with 5 per page translates to LIMIT 5 OFFSET 5
	mock.ExpectQuery(`SELECT (.+) FROM posts p`).
		WithArgs(5, 5).
		WillReturnRows(postInfoRows().
			AddRow(6, "Post 6", "s", "c", "go", "alice", now, now).
			AddRow(7, "Post 7", "s", "c", "go", "alice", now, now))
	mock.ExpectQuery(`SELECT (.+) FROM post_tags pt`).
		WithArgs(6, 7).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "name"}).
			AddRow(6, "testing").
			AddRow(6, "sql"))

	posts, err := repo.List(context.Background(), 2, 5)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, 6, posts[0].ID)
	assert.Equal(t, []string{"testing", "sql"}, posts[0].Tags)
	assert.Empty(t, posts[1].Tags)
	assert.Equal(t, "alice", posts[0].Author)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetInfoByID(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		now := time.Now().UTC()
		mock.ExpectQuery(`SELECT (.+) FROM posts p`).
			WithArgs(6).
			WillReturnRows(postInfoRows().AddRow(6, "Post 6", "s", "c", "go", "alice", now, now))
		mock.ExpectQuery(`SELECT (.+) FROM post_tags pt`).
			WithArgs(6).
			WillReturnRows(sqlmock.NewRows([]string{"post_id", "name"}).AddRow(6, "testing"))

		info, err := repo.GetInfoByID(context.Background(), 6)
		require.NoError(t, err)
		assert.Equal(t, "Post 6", info.Title)
		assert.Equal(t, []string{"testing"}, info.Tags)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM posts p`).
			WithArgs(99).
			WillReturnRows(postInfoRows())

		info, err := repo.GetInfoByID(context.Background(), 99)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, info)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepository_Count(t *testing.T) {
	repo, mock, cleanup := setupPostTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Update(t *testing.T) {
	repo, mock, cleanup := setupPostTestRepository(t)
	defer cleanup()

	title := "New Title"
	categoryID := 9
	mock.ExpectExec(`UPDATE posts SET updated_at = \?, title = \?, category_id = \? WHERE id = \?`).
		WithArgs(sqlmock.AnyArg(), "New Title", 9, 6).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), 6, &models.PostUpdateRequest{
		Title:      &title,
		CategoryID: &categoryID,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ReplaceTags(t *testing.T) {
	repo, mock, cleanup := setupPostTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`DELETE FROM post_tags`).
		WithArgs(6).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO post_tags`).
		WithArgs(6, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ReplaceTags(context.Background(), 6, []int{3})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM posts`).
			WithArgs(6).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), 6)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, cleanup := setupPostTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM posts`).
			WithArgs(99).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 99)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
