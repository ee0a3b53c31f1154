package services

import (
	"context"
	"errors"
	"testing"

	"github.com/moblog/backend/internal/auth"
	"github.com/moblog/backend/internal/models"
	"github.com/moblog/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	user         *models.User
	users        []models.User
	err          error
	existsResult bool
	existsErr    error
	countResult  int
	countErr     error
	createErr    error
	updateErr    error
	deleteErr    error

	createdUser  *models.User
	updatedPatch *models.UserPatch
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = 1
	m.createdUser = user
	return nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existsResult, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.countResult, nil
}

func (m *mockUserRepository) List(ctx context.Context) ([]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users, nil
}

func (m *mockUserRepository) Update(ctx context.Context, username string, patch *models.UserPatch) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedPatch = patch
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, username string) error {
	return m.deleteErr
}

// mockTokenIssuer is a mock implementation of TokenIssuer
type mockTokenIssuer struct {
	token string
	err   error
}

func (m *mockTokenIssuer) Issue(username string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name        string
		req         *models.RegisterRequest
		userRepo    *mockUserRepository
		wantErr     error
		wantIsAdmin bool
	}{
		{
			name:        "first user becomes admin",
			req:         &models.RegisterRequest{Username: "alice", Password: "abc123de"},
			userRepo:    &mockUserRepository{countResult: 0},
			wantIsAdmin: true,
		},
		{
			name:        "second user is not admin",
			req:         &models.RegisterRequest{Username: "bob", Password: "abc123de"},
			userRepo:    &mockUserRepository{countResult: 1},
			wantIsAdmin: false,
		},
		{
			name:     "empty username",
			req:      &models.RegisterRequest{Username: "   ", Password: "abc123de"},
			userRepo: &mockUserRepository{},
			wantErr:  ErrInvalidInput,
		},
		{
			name:     "reserved username",
			req:      &models.RegisterRequest{Username: "me", Password: "abc123de"},
			userRepo: &mockUserRepository{},
			wantErr:  ErrInvalidInput,
		},
		{
			name:     "weak password",
			req:      &models.RegisterRequest{Username: "alice", Password: "ABC12345"},
			userRepo: &mockUserRepository{},
			wantErr:  ErrInvalidInput,
		},
		{
			name:     "username taken",
			req:      &models.RegisterRequest{Username: "alice", Password: "abc123de"},
			userRepo: &mockUserRepository{existsResult: true},
			wantErr:  ErrDuplicate,
		},
		{
			name:     "duplicate race on insert",
			req:      &models.RegisterRequest{Username: "alice", Password: "abc123de"},
			userRepo: &mockUserRepository{createErr: repositories.ErrDuplicateEntry},
			wantErr:  ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.userRepo, &mockTokenIssuer{token: "tok"}, zap.NewNop())

			token, err := svc.Register(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "tok", token)
			require.NotNil(t, tt.userRepo.createdUser)
			assert.Equal(t, tt.wantIsAdmin, tt.userRepo.createdUser.IsAdmin)
			assert.NotEqual(t, tt.req.Password, tt.userRepo.createdUser.PasswordHash)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	hash, err := auth.HashPassword("abc123de")
	require.NoError(t, err)
	alice := &models.User{ID: 1, Username: "alice", PasswordHash: hash}

	tests := []struct {
		name     string
		req      *models.LoginRequest
		userRepo *mockUserRepository
		wantErr  error
	}{
		{
			name:     "success",
			req:      &models.LoginRequest{Username: "alice", Password: "abc123de"},
			userRepo: &mockUserRepository{user: alice},
		},
		{
			name:     "missing fields",
			req:      &models.LoginRequest{Username: "alice"},
			userRepo: &mockUserRepository{user: alice},
			wantErr:  ErrInvalidInput,
		},
		{
			name:     "unknown user",
			req:      &models.LoginRequest{Username: "ghost", Password: "abc123de"},
			userRepo: &mockUserRepository{err: repositories.ErrNotFound},
			wantErr:  ErrNotFound,
		},
		{
			name:     "wrong password",
			req:      &models.LoginRequest{Username: "alice", Password: "wrong123"},
			userRepo: &mockUserRepository{user: alice},
			wantErr:  ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.userRepo, &mockTokenIssuer{token: "tok"}, zap.NewNop())

			token, err := svc.Login(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "tok", token)
		})
	}
}

func TestUserService_Get(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice", PasswordHash: "hash", IsAdmin: true}

	t.Run("named user without caller", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{user: alice}, &mockTokenIssuer{}, zap.NewNop())

		info, err := svc.Get(context.Background(), models.Identity{Username: "alice"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "alice", info.Username)
		assert.True(t, info.IsAdmin)
	})

	t.Run("self without caller", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{user: alice}, &mockTokenIssuer{}, zap.NewNop())

		info, err := svc.Get(context.Background(), models.Identity{IsSelf: true}, nil)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.Nil(t, info)
	})

	t.Run("self with caller", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{user: alice}, &mockTokenIssuer{}, zap.NewNop())

		info, err := svc.Get(context.Background(), models.Identity{IsSelf: true}, alice)
		require.NoError(t, err)
		assert.Equal(t, "alice", info.Username)
	})

	t.Run("not found", func(t *testing.T) {
		svc := NewUserService(&mockUserRepository{err: repositories.ErrNotFound}, &mockTokenIssuer{}, zap.NewNop())

		info, err := svc.Get(context.Background(), models.Identity{Username: "ghost"}, nil)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, info)
	})
}

func TestUserService_Update(t *testing.T) {
	admin := &models.User{ID: 1, Username: "root", IsAdmin: true}
	alice := &models.User{ID: 2, Username: "alice"}
	truth := true

	tests := []struct {
		name    string
		caller  *models.User
		target  models.Identity
		req     *models.UserUpdateRequest
		repo    *mockUserRepository
		wantErr error
	}{
		{
			name:   "self update password",
			caller: alice,
			target: models.Identity{IsSelf: true},
			req:    &models.UserUpdateRequest{Password: ptr("newpass99")},
			repo:   &mockUserRepository{user: alice},
		},
		{
			name:    "self update weak password",
			caller:  alice,
			target:  models.Identity{IsSelf: true},
			req:     &models.UserUpdateRequest{Password: ptr("short")},
			repo:    &mockUserRepository{user: alice},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "non-admin updating another user",
			caller:  alice,
			target:  models.Identity{Username: "root"},
			req:     &models.UserUpdateRequest{Password: ptr("newpass99")},
			repo:    &mockUserRepository{user: admin},
			wantErr: ErrForbidden,
		},
		{
			name:    "non-admin granting admin to self",
			caller:  alice,
			target:  models.Identity{IsSelf: true},
			req:     &models.UserUpdateRequest{IsAdmin: &truth},
			repo:    &mockUserRepository{user: alice},
			wantErr: ErrForbidden,
		},
		{
			name:   "admin updating another user",
			caller: admin,
			target: models.Identity{Username: "alice"},
			req:    &models.UserUpdateRequest{IsAdmin: &truth},
			repo:   &mockUserRepository{user: alice},
		},
		{
			name:    "target missing",
			caller:  admin,
			target:  models.Identity{Username: "ghost"},
			req:     &models.UserUpdateRequest{IsAdmin: &truth},
			repo:    &mockUserRepository{err: repositories.ErrNotFound},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.repo, &mockTokenIssuer{}, zap.NewNop())

			info, err := svc.Update(context.Background(), tt.caller, tt.target, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, info)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, info)
		})
	}

	t.Run("password is stored hashed", func(t *testing.T) {
		repo := &mockUserRepository{user: alice}
		svc := NewUserService(repo, &mockTokenIssuer{}, zap.NewNop())

		_, err := svc.Update(context.Background(), alice, models.Identity{IsSelf: true},
			&models.UserUpdateRequest{Password: ptr("newpass99")})
		require.NoError(t, err)
		require.NotNil(t, repo.updatedPatch)
		require.NotNil(t, repo.updatedPatch.PasswordHash)
		assert.True(t, auth.CheckPassword("newpass99", *repo.updatedPatch.PasswordHash))
	})

	t.Run("empty patch skips the repository write", func(t *testing.T) {
		repo := &mockUserRepository{user: alice, updateErr: errors.New("should not be called")}
		svc := NewUserService(repo, &mockTokenIssuer{}, zap.NewNop())

		info, err := svc.Update(context.Background(), alice, models.Identity{IsSelf: true},
			&models.UserUpdateRequest{})
		require.NoError(t, err)
		assert.NotNil(t, info)
	})
}

func TestUserService_Delete(t *testing.T) {
	admin := &models.User{ID: 1, Username: "root", IsAdmin: true}
	alice := &models.User{ID: 2, Username: "alice"}

	tests := []struct {
		name    string
		caller  *models.User
		target  models.Identity
		repo    *mockUserRepository
		wantErr error
	}{
		{
			name:   "self delete",
			caller: alice,
			target: models.Identity{IsSelf: true},
			repo:   &mockUserRepository{},
		},
		{
			name:    "non-admin deleting another user",
			caller:  alice,
			target:  models.Identity{Username: "root"},
			repo:    &mockUserRepository{},
			wantErr: ErrForbidden,
		},
		{
			name:   "admin deleting another user",
			caller: admin,
			target: models.Identity{Username: "alice"},
			repo:   &mockUserRepository{},
		},
		{
			name:    "target missing",
			caller:  admin,
			target:  models.Identity{Username: "ghost"},
			repo:    &mockUserRepository{deleteErr: repositories.ErrNotFound},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewUserService(tt.repo, &mockTokenIssuer{}, zap.NewNop())

			err := svc.Delete(context.Background(), tt.caller, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUserService_List(t *testing.T) {
	repo := &mockUserRepository{users: []models.User{
		{ID: 1, Username: "root", PasswordHash: "secret", IsAdmin: true},
		{ID: 2, Username: "alice", PasswordHash: "secret"},
	}}
	svc := NewUserService(repo, &mockTokenIssuer{}, zap.NewNop())

	infos, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "root", infos[0].Username)
	assert.True(t, infos[0].IsAdmin)
	assert.Equal(t, "alice", infos[1].Username)
}

func ptr[T any](v T) *T {
	return &v
}
