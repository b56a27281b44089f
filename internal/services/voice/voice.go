// Package voice содержит бизнес-логику библиотеки голосов:
// список доступных голосов, клонирование и удаление клонов.
//
// Клонирование — это регистрация образца аудио, а не обучение модели:
// сохранённый образец передаётся движку синтеза как speaker reference.
package voice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/novavoice-backend/internal/lib/sl"
	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/storage/repository"
)

// Доменные ошибки библиотеки голосов.
var (
	// ErrFeatureGated — клонирование недоступно на тарифе пользователя.
	ErrFeatureGated = errors.New("voice cloning requires Premium or Ultimate tier")
	// ErrForbidden — голос не принадлежит пользователю.
	ErrForbidden = errors.New("voice is not owned by the caller")
	// ErrNotFound — голос отсутствует.
	ErrNotFound = errors.New("voice not found")
)

const builtinCacheKey = "voices:builtin"

// VoiceRepository определяет методы работы с голосами в хранилище.
type VoiceRepository interface {
	CreateVoice(ctx context.Context, voice models.Voice) (int, error)
	GetVoice(ctx context.Context, id int) (*models.Voice, error)
	ListBuiltinVoices(ctx context.Context) ([]*models.Voice, error)
	ListClonedVoices(ctx context.Context, userUID string) ([]*models.Voice, error)
	RemoveVoice(ctx context.Context, id int) (int, error)
}

// UserRepository нужен для проверки тарифа при клонировании.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// SampleStore хранит образцы аудио для клонов.
type SampleStore interface {
	SaveSample(data []byte, originalName string) (string, error)
	Remove(path string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику библиотеки голосов.
type Service struct {
	voices  VoiceRepository
	users   UserRepository
	samples SampleStore
	cache   Cache
	log     *slog.Logger
}

// New создает новый экземпляр Service.
func New(voices VoiceRepository, users UserRepository, samples SampleStore, cache Cache, log *slog.Logger) *Service {
	return &Service{
		voices:  voices,
		users:   users,
		samples: samples,
		cache:   cache,
		log:     log,
	}
}

// List возвращает встроенные голоса и клоны пользователя.
// Встроенный список меняется только миграциями, поэтому кешируется.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.Voice, error) {
	var builtin []*models.Voice
	found, err := s.cache.Get(builtinCacheKey, &builtin)
	if err != nil {
		s.log.Warn("builtin voices cache unavailable", sl.Err(err))
		found = false
	}
	if !found {
		builtin, err = s.voices.ListBuiltinVoices(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(builtinCacheKey, builtin, time.Hour); err != nil {
			s.log.Warn("failed to cache builtin voices", sl.Err(err))
		}
	}

	cloned, err := s.voices.ListClonedVoices(ctx, userUID)
	if err != nil {
		return nil, err
	}
	return append(builtin, cloned...), nil
}

// Clone сохраняет образец аудио и регистрирует клонированный голос.
// Доступно только тарифам Premium и Ultimate.
func (s *Service) Clone(ctx context.Context, userUID, name, language string, sample []byte, sampleName string) (*models.Voice, error) {
	user, err := s.users.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if !user.Tier.AllowsCloning() {
		return nil, ErrFeatureGated
	}

	samplePath, err := s.samples.SaveSample(sample, sampleName)
	if err != nil {
		return nil, err
	}

	if language == "" {
		language = "en-US"
	}
	voice := models.Voice{
		UserUID:     userUID,
		Name:        name,
		Kind:        models.VoiceKindCloned,
		EngineVoice: "cloned",
		Language:    language,
		SamplePath:  samplePath,
	}
	id, err := s.voices.CreateVoice(ctx, voice)
	if err != nil {
		// Не оставляем осиротевший образец на диске.
		if rmErr := s.samples.Remove(samplePath); rmErr != nil {
			s.log.Warn("failed to remove orphan sample", sl.Err(rmErr))
		}
		return nil, err
	}
	voice.ID = id

	s.log.Info("cloned voice registered",
		slog.Int("voice_id", id), slog.String("user_uid", userUID))
	return &voice, nil
}

// Delete удаляет клон пользователя вместе с его образцом.
// Чужие и встроенные голоса удалить нельзя.
func (s *Service) Delete(ctx context.Context, userUID string, voiceID int) error {
	voice, err := s.voices.GetVoice(ctx, voiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if voice.Builtin() || voice.UserUID != userUID {
		return ErrForbidden
	}

	if _, err := s.voices.RemoveVoice(ctx, voiceID); err != nil {
		return err
	}
	if err := s.samples.Remove(voice.SamplePath); err != nil {
		s.log.Warn("failed to remove voice sample", sl.Err(err))
	}
	return nil
}
