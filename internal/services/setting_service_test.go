package services

import (
	"context"
	"testing"

	"github.com/moblog/backend/internal/models"
	"github.com/moblog/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockSettingRepository is an in-memory implementation of SettingRepository
type mockSettingRepository struct {
	values map[string]string
	getErr error
	setErr error
}

func newMockSettingRepository() *mockSettingRepository {
	return &mockSettingRepository{values: map[string]string{}}
}

func (m *mockSettingRepository) GetAll(ctx context.Context) (map[string]string, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.values, nil
}

func (m *mockSettingRepository) Get(ctx context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	value, ok := m.values[key]
	if !ok {
		return "", repositories.ErrNotFound
	}
	return value, nil
}

func (m *mockSettingRepository) Set(ctx context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func TestSettingService_Set(t *testing.T) {
	tests := []struct {
		name    string
		req     *models.SettingSetRequest
		wantErr error
	}{
		{
			name: "success",
			req:  &models.SettingSetRequest{Key: "site_title", Value: "New Title"},
		},
		{
			name:    "empty key",
			req:     &models.SettingSetRequest{Key: " ", Value: "x"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "reserved init key",
			req:     &models.SettingSetRequest{Key: "init", Value: "y"},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockSettingRepository()
			svc := NewSettingService(repo, zap.NewNop())

			err := svc.Set(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.req.Value, repo.values[tt.req.Key])
		})
	}
}

func TestSettingService_IsInit(t *testing.T) {
	t.Run("absent marker", func(t *testing.T) {
		svc := NewSettingService(newMockSettingRepository(), zap.NewNop())

		seeded, err := svc.IsInit(context.Background())
		require.NoError(t, err)
		assert.False(t, seeded)
	})

	t.Run("marker set to n", func(t *testing.T) {
		repo := newMockSettingRepository()
		repo.values["init"] = "n"
		svc := NewSettingService(repo, zap.NewNop())

		seeded, err := svc.IsInit(context.Background())
		require.NoError(t, err)
		assert.False(t, seeded)
	})

	t.Run("marker set to y", func(t *testing.T) {
		repo := newMockSettingRepository()
		repo.values["init"] = "y"
		svc := NewSettingService(repo, zap.NewNop())

		seeded, err := svc.IsInit(context.Background())
		require.NoError(t, err)
		assert.True(t, seeded)
	})
}

func TestSettingService_EnsureSeeded(t *testing.T) {
	t.Run("seeds the defaults on first run", func(t *testing.T) {
		repo := newMockSettingRepository()
		svc := NewSettingService(repo, zap.NewNop())

		require.NoError(t, svc.EnsureSeeded(context.Background()))
		assert.Equal(t, "y", repo.values["init"])
		assert.Equal(t, "My Blog", repo.values["site_title"])
		assert.Contains(t, repo.values, "site_description")
		assert.Contains(t, repo.values, "site_keywords")
		assert.Contains(t, repo.values, "site_logo")
	})

	t.Run("idempotent once seeded", func(t *testing.T) {
		repo := newMockSettingRepository()
		svc := NewSettingService(repo, zap.NewNop())

		require.NoError(t, svc.EnsureSeeded(context.Background()))
		repo.values["site_title"] = "Edited"

		require.NoError(t, svc.EnsureSeeded(context.Background()))
		assert.Equal(t, "Edited", repo.values["site_title"])
	})
}

func TestSettingService_Reinit(t *testing.T) {
	repo := newMockSettingRepository()
	svc := NewSettingService(repo, zap.NewNop())

	require.NoError(t, svc.EnsureSeeded(context.Background()))
	repo.values["site_title"] = "Edited"

	require.NoError(t, svc.Reinit(context.Background()))
	assert.Equal(t, "My Blog", repo.values["site_title"])
	assert.Equal(t, "y", repo.values["init"])
}
