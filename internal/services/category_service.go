package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

// CategoryRepository is the interface that wraps methods for Category table data access
type CategoryRepository interface {
	// Method Create inserts a new category.
	//
	// If the name is already taken, the returned error wraps
	// repositories.ErrDuplicateEntry.
	Create(ctx context.Context, category *models.Category) error
	// Method GetByID retrieves a category by id.
	GetByID(ctx context.Context, id int) (*models.Category, error)
	// Method List retrieves all categories ordered by id.
	List(ctx context.Context) ([]models.Category, error)
	// Method Delete removes a category; posts keep their dangling category_id.
	Delete(ctx context.Context, id int) error
}

// CategorizedPostLister pages through the posts filed under one category
type CategorizedPostLister interface {
	ListByCategory(ctx context.Context, categoryID, page, perPage int) ([]models.PostInfo, error)
	CountByCategory(ctx context.Context, categoryID int) (int, error)
}

// categoryService implements category management and per-category post listings
type categoryService struct {
	categoryRepo CategoryRepository
	posts        CategorizedPostLister
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo CategoryRepository, posts CategorizedPostLister, logger *zap.Logger) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		posts:        posts,
		logger:       logger,
	}
}

// List returns every category
func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.List(ctx)
}

// Create stores a new category with a unique name
func (s *categoryService) Create(ctx context.Context, req *models.CategoryCreateRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty: %w", ErrInvalidInput)
	}

	category := &models.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if isRepoDuplicate(err) {
			return nil, fmt.Errorf("category %q: %w", name, ErrDuplicate)
		}
		return nil, err
	}

	return category, nil
}

// GetPosts returns one page of the posts filed under the category
func (s *categoryService) GetPosts(ctx context.Context, id, page, perPage int) (*models.PostListResult, error) {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if isRepoNotFound(err) {
			return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	page, perPage = NormalizePage(page, perPage)

	posts, err := s.posts.ListByCategory(ctx, id, page, perPage)
	if err != nil {
		return nil, err
	}

	total, err := s.posts.CountByCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	return newPostListResult(posts, total, page, perPage), nil
}

// Delete removes a category. Existing posts keep pointing at the dead id and
// render an empty category name from then on.
func (s *categoryService) Delete(ctx context.Context, id int) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if isRepoNotFound(err) {
			return fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return err
	}

	s.logger.Info("category deleted", zap.Int("category_id", id))
	return nil
}
