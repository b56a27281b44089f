package voice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/storage/repository"
)

type VoicesMock struct{ mock.Mock }

func (m *VoicesMock) CreateVoice(ctx context.Context, voice models.Voice) (int, error) {
	args := m.Called(ctx, voice)
	return args.Int(0), args.Error(1)
}
func (m *VoicesMock) GetVoice(ctx context.Context, id int) (*models.Voice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Voice), args.Error(1)
}
func (m *VoicesMock) ListBuiltinVoices(ctx context.Context) ([]*models.Voice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Voice), args.Error(1)
}
func (m *VoicesMock) ListClonedVoices(ctx context.Context, userUID string) ([]*models.Voice, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Voice), args.Error(1)
}
func (m *VoicesMock) RemoveVoice(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

type UsersMock struct{ mock.Mock }

func (m *UsersMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type SamplesMock struct{ mock.Mock }

func (m *SamplesMock) SaveSample(data []byte, originalName string) (string, error) {
	args := m.Called(data, originalName)
	return args.String(0), args.Error(1)
}
func (m *SamplesMock) Remove(path string) error {
	return m.Called(path).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}
func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}
func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestVoiceService_List(t *testing.T) {
	builtin := []*models.Voice{
		{ID: 1, Name: "Nova", Kind: models.VoiceKindBuiltin},
		{ID: 2, Name: "Stella", Kind: models.VoiceKindBuiltin},
	}
	cloned := []*models.Voice{
		{ID: 10, Name: "My clone", Kind: models.VoiceKindCloned, UserUID: "uid-1"},
	}

	tests := []struct {
		name       string
		setupMocks func(v *VoicesMock, c *CacheMock)
		wantLen    int
		wantErr    bool
	}{
		{
			name: "cache miss loads builtins from storage",
			setupMocks: func(v *VoicesMock, c *CacheMock) {
				c.On("Get", "voices:builtin", mock.Anything).Return(false, nil).Once()
				v.On("ListBuiltinVoices", mock.Anything).Return(builtin, nil).Once()
				c.On("Set", "voices:builtin", builtin, time.Hour).Return(nil).Once()
				v.On("ListClonedVoices", mock.Anything, "uid-1").Return(cloned, nil).Once()
			},
			wantLen: 3,
		},
		{
			name: "cache hit skips builtin query",
			setupMocks: func(v *VoicesMock, c *CacheMock) {
				c.On("Get", "voices:builtin", mock.Anything).Return(true, nil).Run(func(args mock.Arguments) {
					ptr := args.Get(1).(*[]*models.Voice)
					*ptr = builtin
				}).Once()
				v.On("ListClonedVoices", mock.Anything, "uid-1").Return(cloned, nil).Once()
			},
			wantLen: 3,
		},
		{
			name: "cache error falls back to storage",
			setupMocks: func(v *VoicesMock, c *CacheMock) {
				c.On("Get", "voices:builtin", mock.Anything).Return(false, errors.New("redis down")).Once()
				v.On("ListBuiltinVoices", mock.Anything).Return(builtin, nil).Once()
				c.On("Set", "voices:builtin", builtin, time.Hour).Return(errors.New("redis down")).Once()
				v.On("ListClonedVoices", mock.Anything, "uid-1").Return([]*models.Voice{}, nil).Once()
			},
			wantLen: 2,
		},
		{
			name: "storage failure",
			setupMocks: func(v *VoicesMock, c *CacheMock) {
				c.On("Get", "voices:builtin", mock.Anything).Return(false, nil).Once()
				v.On("ListBuiltinVoices", mock.Anything).Return(nil, errors.New("db error")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voices := new(VoicesMock)
			users := new(UsersMock)
			samples := new(SamplesMock)
			cache := new(CacheMock)
			svc := New(voices, users, samples, cache, newNoopLogger())

			tt.setupMocks(voices, cache)

			got, err := svc.List(context.Background(), "uid-1")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, got, tt.wantLen)
			}

			voices.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestVoiceService_Clone(t *testing.T) {
	sample := []byte("RIFF....WAVE")

	tests := []struct {
		name       string
		setupMocks func(v *VoicesMock, u *UsersMock, s *SamplesMock)
		wantErr    error
	}{
		{
			name: "premium user clones voice",
			setupMocks: func(v *VoicesMock, u *UsersMock, s *SamplesMock) {
				u.On("GetUser", mock.Anything, "uid-1").
					Return(&models.User{UUID: "uid-1", Tier: models.TierPremium}, nil).Once()
				s.On("SaveSample", sample, "my-voice.wav").Return("/samples/clone_x.wav", nil).Once()
				v.On("CreateVoice", mock.Anything, mock.MatchedBy(func(voice models.Voice) bool {
					return voice.UserUID == "uid-1" &&
						voice.Kind == models.VoiceKindCloned &&
						voice.EngineVoice == "cloned" &&
						voice.SamplePath == "/samples/clone_x.wav"
				})).Return(10, nil).Once()
			},
		},
		{
			name: "basic tier is gated",
			setupMocks: func(_ *VoicesMock, u *UsersMock, _ *SamplesMock) {
				u.On("GetUser", mock.Anything, "uid-1").
					Return(&models.User{UUID: "uid-1", Tier: models.TierBasic}, nil).Once()
			},
			wantErr: ErrFeatureGated,
		},
		{
			name: "orphan sample removed on insert failure",
			setupMocks: func(v *VoicesMock, u *UsersMock, s *SamplesMock) {
				u.On("GetUser", mock.Anything, "uid-1").
					Return(&models.User{UUID: "uid-1", Tier: models.TierUltimate}, nil).Once()
				s.On("SaveSample", sample, "my-voice.wav").Return("/samples/clone_x.wav", nil).Once()
				v.On("CreateVoice", mock.Anything, mock.Anything).
					Return(0, errors.New("db error")).Once()
				s.On("Remove", "/samples/clone_x.wav").Return(nil).Once()
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voices := new(VoicesMock)
			users := new(UsersMock)
			samples := new(SamplesMock)
			svc := New(voices, users, samples, new(CacheMock), newNoopLogger())

			tt.setupMocks(voices, users, samples)

			got, err := svc.Clone(context.Background(), "uid-1", "My clone", "", sample, "my-voice.wav")
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 10, got.ID)
				assert.Equal(t, "en-US", got.Language) // дефолт при пустом языке
			}

			voices.AssertExpectations(t)
			users.AssertExpectations(t)
			samples.AssertExpectations(t)
		})
	}
}

func TestVoiceService_Delete(t *testing.T) {
	tests := []struct {
		name       string
		id         int
		setupMocks func(v *VoicesMock, s *SamplesMock)
		wantErr    error
	}{
		{
			name: "owner deletes clone",
			id:   10,
			setupMocks: func(v *VoicesMock, s *SamplesMock) {
				v.On("GetVoice", mock.Anything, 10).Return(&models.Voice{
					ID: 10, UserUID: "uid-1", Kind: models.VoiceKindCloned,
					SamplePath: "/samples/clone_x.wav",
				}, nil).Once()
				v.On("RemoveVoice", mock.Anything, 10).Return(1, nil).Once()
				s.On("Remove", "/samples/clone_x.wav").Return(nil).Once()
			},
		},
		{
			name: "builtin voice is protected",
			id:   1,
			setupMocks: func(v *VoicesMock, _ *SamplesMock) {
				v.On("GetVoice", mock.Anything, 1).Return(&models.Voice{
					ID: 1, Kind: models.VoiceKindBuiltin,
				}, nil).Once()
			},
			wantErr: ErrForbidden,
		},
		{
			name: "foreign clone is forbidden",
			id:   10,
			setupMocks: func(v *VoicesMock, _ *SamplesMock) {
				v.On("GetVoice", mock.Anything, 10).Return(&models.Voice{
					ID: 10, UserUID: "uid-2", Kind: models.VoiceKindCloned,
				}, nil).Once()
			},
			wantErr: ErrForbidden,
		},
		{
			name: "missing voice",
			id:   99,
			setupMocks: func(v *VoicesMock, _ *SamplesMock) {
				v.On("GetVoice", mock.Anything, 99).
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			voices := new(VoicesMock)
			samples := new(SamplesMock)
			svc := New(voices, new(UsersMock), samples, new(CacheMock), newNoopLogger())

			tt.setupMocks(voices, samples)

			err := svc.Delete(context.Background(), "uid-1", tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			voices.AssertExpectations(t)
			samples.AssertExpectations(t)
		})
	}
}
