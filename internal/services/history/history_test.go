package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetGeneration(ctx context.Context, id int) (*models.Generation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Generation), args.Error(1)
}
func (m *RepoMock) ListGenerations(ctx context.Context, userUID string, limit, offset int) ([]*models.Generation, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Generation), args.Error(1)
}
func (m *RepoMock) RemoveGeneration(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type ArtifactsMock struct{ mock.Mock }

func (m *ArtifactsMock) Remove(path string) error {
	return m.Called(path).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestHistoryService_List(t *testing.T) {
	entries := []*models.Generation{
		{ID: 2, UserUID: "uid-1", Text: "second"},
		{ID: 1, UserUID: "uid-1", Text: "first"},
	}

	repo := new(RepoMock)
	svc := New(repo, new(ArtifactsMock), newNoopLogger())

	repo.On("ListGenerations", mock.Anything, "uid-1", 20, 0).Return(entries, nil).Once()

	got, err := svc.List(context.Background(), "uid-1", 20, 0)
	assert.NoError(t, err)
	assert.Equal(t, entries, got)
	repo.AssertExpectations(t)
}

func TestHistoryService_GetAudio(t *testing.T) {
	own := &models.Generation{ID: 1, UserUID: "uid-1", AudioPath: "/audio/gen_x.wav"}

	tests := []struct {
		name       string
		id         int
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name: "owner gets record",
			id:   1,
			setupMocks: func(r *RepoMock) {
				r.On("GetGeneration", mock.Anything, 1).Return(own, nil).Once()
			},
		},
		{
			name: "missing record",
			id:   99,
			setupMocks: func(r *RepoMock) {
				r.On("GetGeneration", mock.Anything, 99).Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrNotFound,
		},
		{
			name: "foreign record looks missing",
			id:   2,
			setupMocks: func(r *RepoMock) {
				r.On("GetGeneration", mock.Anything, 2).
					Return(&models.Generation{ID: 2, UserUID: "uid-2"}, nil).Once()
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := New(repo, new(ArtifactsMock), newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.GetAudio(context.Background(), "uid-1", tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, own, got)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestHistoryService_Remove(t *testing.T) {
	own := &models.Generation{ID: 1, UserUID: "uid-1", AudioPath: "/audio/gen_x.wav"}

	t.Run("removes record and artifact", func(t *testing.T) {
		repo := new(RepoMock)
		artifacts := new(ArtifactsMock)
		svc := New(repo, artifacts, newNoopLogger())

		repo.On("GetGeneration", mock.Anything, 1).Return(own, nil).Once()
		repo.On("RemoveGeneration", mock.Anything, 1).Return(1, nil).Once()
		artifacts.On("Remove", "/audio/gen_x.wav").Return(nil).Once()

		assert.NoError(t, svc.Remove(context.Background(), "uid-1", 1))
		repo.AssertExpectations(t)
		artifacts.AssertExpectations(t)
	})

	t.Run("artifact removal failure is not fatal", func(t *testing.T) {
		repo := new(RepoMock)
		artifacts := new(ArtifactsMock)
		svc := New(repo, artifacts, newNoopLogger())

		repo.On("GetGeneration", mock.Anything, 1).Return(own, nil).Once()
		repo.On("RemoveGeneration", mock.Anything, 1).Return(1, nil).Once()
		artifacts.On("Remove", "/audio/gen_x.wav").Return(errors.New("disk error")).Once()

		assert.NoError(t, svc.Remove(context.Background(), "uid-1", 1))
	})

	t.Run("foreign record is not removed", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, new(ArtifactsMock), newNoopLogger())

		repo.On("GetGeneration", mock.Anything, 2).
			Return(&models.Generation{ID: 2, UserUID: "uid-2"}, nil).Once()

		assert.ErrorIs(t, svc.Remove(context.Background(), "uid-1", 2), ErrNotFound)
		repo.AssertNotCalled(t, "RemoveGeneration", mock.Anything, mock.Anything)
	})
}
