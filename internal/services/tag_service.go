package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/moblog/backend/internal/models"
	"go.uber.org/zap"
)

// TagRepository is the interface that wraps methods for Tag table data access
type TagRepository interface {
	// Method Create inserts a new tag.
	//
	// If the name is already taken, the returned error wraps
	// repositories.ErrDuplicateEntry.
	Create(ctx context.Context, tag *models.Tag) error
	// Method GetByID retrieves a tag by id.
	GetByID(ctx context.Context, id int) (*models.Tag, error)
	// Method List retrieves all tags ordered by id.
	List(ctx context.Context) ([]models.Tag, error)
	// Method Delete removes a tag; join rows cascade.
	Delete(ctx context.Context, id int) error
}

// TaggedPostLister pages through the posts carrying one tag
type TaggedPostLister interface {
	ListByTag(ctx context.Context, tagID, page, perPage int) ([]models.PostInfo, error)
	CountByTag(ctx context.Context, tagID int) (int, error)
}

// tagService implements tag management and per-tag post listings
type tagService struct {
	tagRepo TagRepository
	posts   TaggedPostLister
	logger  *zap.Logger
}

// NewTagService creates a new tag service
func NewTagService(tagRepo TagRepository, posts TaggedPostLister, logger *zap.Logger) *tagService {
	return &tagService{
		tagRepo: tagRepo,
		posts:   posts,
		logger:  logger,
	}
}

// List returns every tag
func (s *tagService) List(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.List(ctx)
}

// Create stores a new tag with a unique name
func (s *tagService) Create(ctx context.Context, req *models.TagCreateRequest) (*models.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("tag name cannot be empty: %w", ErrInvalidInput)
	}

	tag := &models.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		if isRepoDuplicate(err) {
			return nil, fmt.Errorf("tag %q: %w", name, ErrDuplicate)
		}
		return nil, err
	}

	return tag, nil
}

// GetPosts returns one page of the posts carrying the tag
func (s *tagService) GetPosts(ctx context.Context, id, page, perPage int) (*models.PostListResult, error) {
	if _, err := s.tagRepo.GetByID(ctx, id); err != nil {
		if isRepoNotFound(err) {
			return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	page, perPage = NormalizePage(page, perPage)

	posts, err := s.posts.ListByTag(ctx, id, page, perPage)
	if err != nil {
		return nil, err
	}

	total, err := s.posts.CountByTag(ctx, id)
	if err != nil {
		return nil, err
	}

	return newPostListResult(posts, total, page, perPage), nil
}

// Delete removes a tag. Posts still carrying it only lose the association.
func (s *tagService) Delete(ctx context.Context, id int) error {
	if err := s.tagRepo.Delete(ctx, id); err != nil {
		if isRepoNotFound(err) {
			return fmt.Errorf("tag %d: %w", id, ErrNotFound)
		}
		return err
	}

	s.logger.Info("tag deleted", zap.Int("tag_id", id))
	return nil
}
