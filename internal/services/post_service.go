package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

// Pagination defaults and bounds for post listings
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PostRepository is the interface that wraps methods for Post table data access
type PostRepository interface {
	// Method Create inserts a new post and its tag relations.
	Create(ctx context.Context, post *models.Post, tagIDs []int) error
	// Method GetByID retrieves a raw post row by id.
	//
	// If no such post exists, the returned error wraps repositories.ErrNotFound.
	GetByID(ctx context.Context, id int) (*models.Post, error)
	// Method GetInfoByID retrieves the client projection of a post.
	GetInfoByID(ctx context.Context, id int) (*models.PostInfo, error)
	// Method List retrieves one page of posts in creation order.
	List(ctx context.Context, page, perPage int) ([]models.PostInfo, error)
	// Method Count returns the total number of posts.
	Count(ctx context.Context) (int, error)
	// Method Update applies a partial update to a post's scalar columns.
	Update(ctx context.Context, id int, patch *models.PostUpdateRequest) error
	// Method ReplaceTags swaps a post's tag set wholesale.
	ReplaceTags(ctx context.Context, postID int, tagIDs []int) error
	// Method Delete removes a post.
	Delete(ctx context.Context, id int) error
}

// TagResolver resolves tag names to ids, failing on any unknown name
type TagResolver interface {
	GetIDsByNames(ctx context.Context, names []string) ([]int, error)
}

// CategoryGetter retrieves a category by id
type CategoryGetter interface {
	GetByID(ctx context.Context, id int) (*models.Category, error)
}

// postService implements post CRUD on top of the repositories
type postService struct {
	postRepo     PostRepository
	tagResolver  TagResolver
	categoryRepo CategoryGetter
	logger       *zap.Logger
}

// NewPostService creates a new post service
func NewPostService(postRepo PostRepository, tagResolver TagResolver, categoryRepo CategoryGetter, logger *zap.Logger) *postService {
	return &postService{
		postRepo:     postRepo,
		tagResolver:  tagResolver,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// NormalizePage clamps page and per-page parameters to sane bounds
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// List returns one page of posts together with the total count
func (s *postService) List(ctx context.Context, page, perPage int) (*models.PostListResult, error) {
	page, perPage = NormalizePage(page, perPage)

	posts, err := s.postRepo.List(ctx, page, perPage)
	if err != nil {
		return nil, err
	}

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return newPostListResult(posts, total, page, perPage), nil
}

// Get returns one post's projection
func (s *postService) Get(ctx context.Context, id int) (*models.PostInfo, error) {
	info, err := s.postRepo.GetInfoByID(ctx, id)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return info, nil
}

// Create stores a new post for the author. The category must exist and every
// tag is referenced by name and must exist.
func (s *postService) Create(ctx context.Context, author *models.User, req *models.PostCreateRequest) (*models.PostInfo, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title cannot be empty: %w", ErrInvalidInput)
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if isRepoNotFound(err) {
			return nil, fmt.Errorf("category %d: %w", req.CategoryID, ErrNotFound)
		}
		return nil, err
	}

	tagIDs, err := s.tagResolver.GetIDsByNames(ctx, req.Tags)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, fmt.Errorf("%v: %w", err, ErrNotFound)
		}
		return nil, err
	}

	post := &models.Post{
		Title:      req.Title,
		Summary:    req.Summary,
		Content:    req.Content,
		AuthorID:   author.ID,
		CategoryID: req.CategoryID,
	}

	if err := s.postRepo.Create(ctx, post, tagIDs); err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		zap.Int("post_id", post.ID),
		zap.String("author", author.Username),
	)

	return s.postRepo.GetInfoByID(ctx, post.ID)
}

// Update applies a partial update; a present tag list replaces the tag set
func (s *postService) Update(ctx context.Context, id int, req *models.PostUpdateRequest) (*models.PostInfo, error) {
	if _, err := s.postRepo.GetByID(ctx, id); err != nil {
		if isRepoNotFound(err) {
			return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			if isRepoNotFound(err) {
				return nil, fmt.Errorf("category %d: %w", *req.CategoryID, ErrNotFound)
			}
			return nil, err
		}
	}

	if req.Tags != nil {
		tagIDs, err := s.tagResolver.GetIDsByNames(ctx, *req.Tags)
		if err != nil {
			if isRepoNotFound(err) {
				return nil, fmt.Errorf("%v: %w", err, ErrNotFound)
			}
			return nil, err
		}
		if err := s.postRepo.ReplaceTags(ctx, id, tagIDs); err != nil {
			return nil, err
		}
	}

	if !req.Empty() {
		if err := s.postRepo.Update(ctx, id, req); err != nil {
			return nil, err
		}
	}

	return s.postRepo.GetInfoByID(ctx, id)
}

// Delete removes a post
func (s *postService) Delete(ctx context.Context, id int) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		if isRepoNotFound(err) {
			return fmt.Errorf("post %d: %w", id, ErrNotFound)
		}
		return err
	}
	return nil
}

// newPostListResult assembles a page result with a non-nil post slice
func newPostListResult(posts []models.PostInfo, total, page, perPage int) *models.PostListResult {
	if posts == nil {
		posts = []models.PostInfo{}
	}
	return &models.PostListResult{
		Total:   total,
		Posts:   posts,
		Page:    page,
		PerPage: perPage,
	}
}
