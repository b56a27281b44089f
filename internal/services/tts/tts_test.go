package tts

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
	"github.com/magabrotheeeer/novavoice-backend/internal/ttsengine"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) GetVoice(ctx context.Context, id int) (*models.Voice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Voice), args.Error(1)
}
func (m *RepoMock) ConsumeGeneration(ctx context.Context, userUID string, dailyLimit int) (bool, error) {
	args := m.Called(ctx, userUID, dailyLimit)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) CreateGeneration(ctx context.Context, gen models.Generation) (int, error) {
	args := m.Called(ctx, gen)
	return args.Int(0), args.Error(1)
}

type EngineMock struct{ mock.Mock }

func (m *EngineMock) GenerateSpeech(ctx context.Context, req ttsengine.Request) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type ArtifactsMock struct{ mock.Mock }

func (m *ArtifactsMock) SaveGenerated(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestTTSService_Generate(t *testing.T) {
	basicUser := &models.User{UUID: "uid-1", Tier: models.TierBasic}
	novaVoice := &models.Voice{
		ID: 1, Name: "Nova", Kind: models.VoiceKindBuiltin,
		EngineVoice: "nova", Language: "en-US",
	}
	audio := []byte("RIFF....WAVE")

	tests := []struct {
		name       string
		text       string
		voiceID    int
		params     models.GenerationParams
		setupMocks func(r *RepoMock, e *EngineMock, a *ArtifactsMock)
		wantErr    error
	}{
		{
			name:    "success with defaults",
			text:    "hello world",
			voiceID: 1,
			setupMocks: func(r *RepoMock, e *EngineMock, a *ArtifactsMock) {
				r.On("GetUser", mock.Anything, "uid-1").Return(basicUser, nil).Once()
				r.On("GetVoice", mock.Anything, 1).Return(novaVoice, nil).Once()
				r.On("ConsumeGeneration", mock.Anything, "uid-1", 10).Return(true, nil).Once()
				e.On("GenerateSpeech", mock.Anything, ttsengine.Request{
					Text:     "hello world",
					Voice:    "nova",
					Language: "en-US",
					Speed:    1.0,
				}).Return(audio, nil).Once()
				a.On("SaveGenerated", audio).Return("/audio/gen_x.wav", nil).Once()
				r.On("CreateGeneration", mock.Anything, mock.MatchedBy(func(g models.Generation) bool {
					return g.UserUID == "uid-1" &&
						g.VoiceID == 1 &&
						g.Text == "hello world" &&
						g.Speed == 1.0 && g.Pitch == 1.0 && g.Emotion == "neutral" &&
						g.AudioPath == "/audio/gen_x.wav"
				})).Return(77, nil).Once()
			},
		},
		{
			name:    "happy emotion prefixes engine text",
			text:    "great news",
			voiceID: 1,
			params:  models.GenerationParams{Emotion: "happy", Speed: 1.5},
			setupMocks: func(r *RepoMock, e *EngineMock, a *ArtifactsMock) {
				r.On("GetUser", mock.Anything, "uid-1").Return(basicUser, nil).Once()
				r.On("GetVoice", mock.Anything, 1).Return(novaVoice, nil).Once()
				r.On("ConsumeGeneration", mock.Anything, "uid-1", 10).Return(true, nil).Once()
				e.On("GenerateSpeech", mock.Anything, mock.MatchedBy(func(req ttsengine.Request) bool {
					return req.Text == "Yay! great news" && req.Speed == 1.5
				})).Return(audio, nil).Once()
				a.On("SaveGenerated", audio).Return("/audio/gen_y.wav", nil).Once()
				r.On("CreateGeneration", mock.Anything, mock.MatchedBy(func(g models.Generation) bool {
					// В историю попадает исходный текст без эмоциональной вставки.
					return g.Text == "great news" && g.Emotion == "happy"
				})).Return(78, nil).Once()
			},
		},
		{
			name:    "quota exceeded",
			text:    "hello",
			voiceID: 1,
			setupMocks: func(r *RepoMock, _ *EngineMock, _ *ArtifactsMock) {
				r.On("GetUser", mock.Anything, "uid-1").Return(basicUser, nil).Once()
				r.On("GetVoice", mock.Anything, 1).Return(novaVoice, nil).Once()
				r.On("ConsumeGeneration", mock.Anything, "uid-1", 10).Return(false, nil).Once()
			},
			wantErr: ErrQuotaExceeded,
		},
		{
			name:    "missing voice",
			text:    "hello",
			voiceID: 99,
			setupMocks: func(r *RepoMock, _ *EngineMock, _ *ArtifactsMock) {
				r.On("GetUser", mock.Anything, "uid-1").Return(basicUser, nil).Once()
				r.On("GetVoice", mock.Anything, 99).Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrVoiceNotFound,
		},
		{
			name:    "foreign clone looks missing",
			text:    "hello",
			voiceID: 10,
			setupMocks: func(r *RepoMock, _ *EngineMock, _ *ArtifactsMock) {
				r.On("GetUser", mock.Anything, "uid-1").Return(basicUser, nil).Once()
				r.On("GetVoice", mock.Anything, 10).Return(&models.Voice{
					ID: 10, UserUID: "uid-2", Kind: models.VoiceKindCloned,
				}, nil).Once()
			},
			wantErr: ErrVoiceNotFound,
		},
		{
			name:    "engine failure after quota consumed",
			text:    "hello",
			voiceID: 1,
			setupMocks: func(r *RepoMock, e *EngineMock, _ *ArtifactsMock) {
				r.On("GetUser", mock.Anything, "uid-1").Return(basicUser, nil).Once()
				r.On("GetVoice", mock.Anything, 1).Return(novaVoice, nil).Once()
				r.On("ConsumeGeneration", mock.Anything, "uid-1", 10).Return(true, nil).Once()
				e.On("GenerateSpeech", mock.Anything, mock.Anything).
					Return(nil, errors.New("engine unavailable")).Once()
			},
			wantErr: errors.New("engine unavailable"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			engine := new(EngineMock)
			artifacts := new(ArtifactsMock)
			svc := New(repo, engine, artifacts, newNoopLogger())

			tt.setupMocks(repo, engine, artifacts)

			got, err := svc.Generate(context.Background(), "uid-1", tt.text, tt.voiceID, tt.params)
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, got.ID)
				assert.Equal(t, tt.text, got.Text)
			}

			repo.AssertExpectations(t)
			engine.AssertExpectations(t)
			artifacts.AssertExpectations(t)
		})
	}
}

func TestTTSService_Generate_PremiumLimit(t *testing.T) {
	// Тариф перечитывается из базы на каждый запрос: после апгрейда
	// лимит должен примениться сразу.
	repo := new(RepoMock)
	engine := new(EngineMock)
	artifacts := new(ArtifactsMock)
	svc := New(repo, engine, artifacts, newNoopLogger())

	repo.On("GetUser", mock.Anything, "uid-1").
		Return(&models.User{UUID: "uid-1", Tier: models.TierPremium}, nil).Once()
	repo.On("GetVoice", mock.Anything, 1).Return(&models.Voice{
		ID: 1, Kind: models.VoiceKindBuiltin, EngineVoice: "nova", Language: "en-US",
	}, nil).Once()
	repo.On("ConsumeGeneration", mock.Anything, "uid-1", 100).Return(false, nil).Once()

	_, err := svc.Generate(context.Background(), "uid-1", "hello", 1, models.GenerationParams{})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	repo.AssertExpectations(t)
}

func TestApplyEmotion(t *testing.T) {
	assert.Equal(t, "Yay! hi", applyEmotion("hi", "happy"))
	assert.Equal(t, "Alas... hi", applyEmotion("hi", "sad"))
	assert.Equal(t, "hi", applyEmotion("hi", "neutral"))
	assert.Equal(t, "hi", applyEmotion("hi", ""))
}
