// Package tts содержит бизнес-логику генерации речи: проверку квоты,
// разрешение голоса, вызов движка синтеза и запись истории.
package tts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/storage/repository"
	"github.com/magabrotheeeer/novavoice-backend/internal/ttsengine"
)

// Доменные ошибки генерации.
var (
	// ErrQuotaExceeded — суточный лимит генераций тарифа исчерпан.
	ErrQuotaExceeded = errors.New("daily generation limit reached")
	// ErrVoiceNotFound — голос отсутствует или не виден пользователю.
	ErrVoiceNotFound = errors.New("voice not found")
)

// Repository объединяет операции хранилища, нужные генерации.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetVoice(ctx context.Context, id int) (*models.Voice, error)
	ConsumeGeneration(ctx context.Context, userUID string, dailyLimit int) (bool, error)
	CreateGeneration(ctx context.Context, gen models.Generation) (int, error)
}

// Engine описывает клиент движка синтеза речи.
type Engine interface {
	GenerateSpeech(ctx context.Context, req ttsengine.Request) ([]byte, error)
}

// ArtifactStore сохраняет сгенерированные WAV-файлы.
type ArtifactStore interface {
	SaveGenerated(data []byte) (string, error)
}

// Service реализует бизнес-логику генерации речи.
type Service struct {
	repo      Repository
	engine    Engine
	artifacts ArtifactStore
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, engine Engine, artifacts ArtifactStore, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		artifacts: artifacts,
		log:       log,
	}
}

// Generate выполняет один запрос синтеза: голос должен быть виден
// пользователю, квота расходуется атомарно до обращения к движку.
func (s *Service) Generate(ctx context.Context, userUID, text string, voiceID int, params models.GenerationParams) (*models.Generation, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	voice, err := s.repo.GetVoice(ctx, voiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVoiceNotFound
		}
		return nil, err
	}
	if !voice.VisibleTo(userUID) {
		return nil, ErrVoiceNotFound
	}

	ok, err := s.repo.ConsumeGeneration(ctx, userUID, user.Tier.DailyLimit())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuotaExceeded
	}

	if params.Speed == 0 {
		params.Speed = 1.0
	}
	if params.Pitch == 0 {
		params.Pitch = 1.0
	}
	if params.Emotion == "" {
		params.Emotion = "neutral"
	}

	// Движок не умеет управлять высотой тона, параметр только фиксируется.
	if params.Pitch != 1.0 {
		s.log.Info("pitch requested but not supported by engine",
			slog.Float64("pitch", params.Pitch))
	}

	audio, err := s.engine.GenerateSpeech(ctx, ttsengine.Request{
		Text:           applyEmotion(text, params.Emotion),
		Voice:          voice.EngineVoice,
		SpeakerRefPath: voice.SamplePath,
		Language:       voice.Language,
		Speed:          params.Speed,
	})
	if err != nil {
		return nil, err
	}

	audioPath, err := s.artifacts.SaveGenerated(audio)
	if err != nil {
		return nil, err
	}

	gen := models.Generation{
		UserUID:   userUID,
		VoiceID:   voice.ID,
		VoiceName: voice.Name,
		Text:      text,
		Speed:     params.Speed,
		Pitch:     params.Pitch,
		Emotion:   params.Emotion,
		AudioPath: audioPath,
	}
	id, err := s.repo.CreateGeneration(ctx, gen)
	if err != nil {
		return nil, err
	}
	gen.ID = id

	s.log.Info("speech generated",
		slog.Int("generation_id", id),
		slog.Int("voice_id", voice.ID),
		slog.Int("audio_bytes", len(audio)))
	return &gen, nil
}

// applyEmotion имитирует эмоцию текстовой вставкой: движок синтеза
// реальной поддержки эмоций не имеет.
func applyEmotion(text, emotion string) string {
	switch emotion {
	case "happy":
		return "Yay! " + text
	case "sad":
		return "Alas... " + text
	default:
		return text
	}
}
