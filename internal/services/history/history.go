// Package history содержит бизнес-логику истории генераций:
// список записей пользователя, выдачу аудио и удаление записей.
package history

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/novavoice-backend/internal/lib/sl"
	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/storage/repository"
)

// ErrNotFound — запись отсутствует или принадлежит другому пользователю.
// Чужие записи неотличимы от несуществующих, чтобы не раскрывать их наличие.
var ErrNotFound = errors.New("generation not found")

// Repository определяет методы работы с историей в хранилище.
type Repository interface {
	GetGeneration(ctx context.Context, id int) (*models.Generation, error)
	ListGenerations(ctx context.Context, userUID string, limit, offset int) ([]*models.Generation, error)
	RemoveGeneration(ctx context.Context, id int) (int, error)
}

// ArtifactStore управляет файлами сгенерированного аудио.
type ArtifactStore interface {
	Remove(path string) error
}

// Service реализует бизнес-логику истории генераций.
type Service struct {
	repo      Repository
	artifacts ArtifactStore
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, artifacts ArtifactStore, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		artifacts: artifacts,
		log:       log,
	}
}

// List возвращает историю генераций пользователя, новые записи первыми.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Generation, error) {
	return s.repo.ListGenerations(ctx, userUID, limit, offset)
}

// GetAudio возвращает запись генерации с путём к аудиофайлу
// после проверки владения.
func (s *Service) GetAudio(ctx context.Context, userUID string, generationID int) (*models.Generation, error) {
	gen, err := s.repo.GetGeneration(ctx, generationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if gen.UserUID != userUID {
		return nil, ErrNotFound
	}
	return gen, nil
}

// Remove удаляет запись генерации вместе с аудиофайлом.
func (s *Service) Remove(ctx context.Context, userUID string, generationID int) error {
	gen, err := s.GetAudio(ctx, userUID, generationID)
	if err != nil {
		return err
	}
	if _, err := s.repo.RemoveGeneration(ctx, generationID); err != nil {
		return err
	}
	if err := s.artifacts.Remove(gen.AudioPath); err != nil {
		s.log.Warn("failed to remove audio artifact", sl.Err(err))
	}
	return nil
}
