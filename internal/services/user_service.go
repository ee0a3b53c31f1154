package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/moblog/backend/internal/auth"
	"github.com/moblog/backend/internal/models"
	"github.com/moblog/backend/internal/repositories"
	"go.uber.org/zap"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// If the username is already taken, the returned error wraps
	// repositories.ErrDuplicateEntry.
	Create(ctx context.Context, user *models.User) error
	// Method GetByUsername retrieves a user by username.
	//
	// If no such user exists, the returned error wraps repositories.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Method ExistsByUsername checks if a user with such username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Method Count returns the number of registered users.
	Count(ctx context.Context) (int, error)
	// Method List retrieves all users ordered by id.
	List(ctx context.Context) ([]models.User, error)
	// Method Update applies a partial update to a user.
	Update(ctx context.Context, username string, patch *models.UserPatch) error
	// Method Delete removes a user by username.
	Delete(ctx context.Context, username string) error
}

// TokenIssuer mints a bearer token for a username
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// userService implements user registration, login and account management
type userService struct {
	userRepo UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo UserRepository, tokens TokenIssuer, logger *zap.Logger) *userService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates a new account and returns a bearer token for it.
// The first account ever registered is granted the admin flag.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (string, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return "", fmt.Errorf("username cannot be empty: %w", ErrInvalidInput)
	}
	if username == models.SelfUsername {
		return "", fmt.Errorf("username %q is reserved: %w", models.SelfUsername, ErrInvalidInput)
	}
	if !auth.ValidatePassword(req.Password) {
		return "", fmt.Errorf("password is too weak: %w", ErrInvalidInput)
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("username %q: %w", username, ErrDuplicate)
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return "", err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		IsAdmin:      count == 0, // first account becomes the admin
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The existence check above can race with a concurrent registration
		if isRepoDuplicate(err) {
			return "", fmt.Errorf("username %q: %w", username, ErrDuplicate)
		}
		return "", err
	}

	s.logger.Info("user registered",
		zap.String("username", user.Username),
		zap.Bool("is_admin", user.IsAdmin),
	)

	return s.tokens.Issue(user.Username)
}

// Login exchanges a username and password for a bearer token
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return "", fmt.Errorf("username and password are required: %w", ErrInvalidInput)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if isRepoNotFound(err) {
			return "", fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return "", err
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return "", fmt.Errorf("password is incorrect: %w", ErrUnauthenticated)
	}

	return s.tokens.Issue(user.Username)
}

// List returns the safe projection of every account
func (s *userService) List(ctx context.Context) ([]models.UserInfo, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]models.UserInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].SafeInfo())
	}

	return infos, nil
}

// Get returns one account's safe projection. A self target needs a caller.
func (s *userService) Get(ctx context.Context, target models.Identity, caller *models.User) (*models.UserInfo, error) {
	if target.IsSelf && caller == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByUsername(ctx, target.Resolve(caller))
	if err != nil {
		if isRepoNotFound(err) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, err
	}

	info := user.SafeInfo()
	return &info, nil
}

// Update applies a partial update. Targeting another account or touching the
// admin flag requires the caller to be an admin; a password change re-hashes
// with a fresh salt.
func (s *userService) Update(ctx context.Context, caller *models.User, target models.Identity, req *models.UserUpdateRequest) (*models.UserInfo, error) {
	username := target.Resolve(caller)

	needAdmin := req.IsAdmin != nil || username != caller.Username
	if needAdmin && !caller.IsAdmin {
		return nil, ErrForbidden
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		if isRepoNotFound(err) {
			return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return nil, err
	}

	patch := &models.UserPatch{
		Avatar:    req.Avatar,
		AvatarSet: req.AvatarSet,
		IsAdmin:   req.IsAdmin,
	}

	if req.Password != nil {
		if !auth.ValidatePassword(*req.Password) {
			return nil, fmt.Errorf("password is too weak: %w", ErrInvalidInput)
		}
		passwordHash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &passwordHash
	}

	if !patch.Empty() {
		if err := s.userRepo.Update(ctx, username, patch); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	info := user.SafeInfo()
	return &info, nil
}

// Delete removes an account. Targeting another account requires admin.
func (s *userService) Delete(ctx context.Context, caller *models.User, target models.Identity) error {
	username := target.Resolve(caller)

	if username != caller.Username && !caller.IsAdmin {
		return ErrForbidden
	}

	if err := s.userRepo.Delete(ctx, username); err != nil {
		if isRepoNotFound(err) {
			return fmt.Errorf("user %q: %w", username, ErrNotFound)
		}
		return err
	}

	s.logger.Info("user deleted",
		zap.String("username", username),
		zap.String("deleted_by", caller.Username),
	)

	return nil
}

// isRepoNotFound reports whether err is the repository's missing-row sentinel
func isRepoNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}

// isRepoDuplicate reports whether err is the repository's unique-key sentinel
func isRepoDuplicate(err error) bool {
	return errors.Is(err, repositories.ErrDuplicateEntry)
}
