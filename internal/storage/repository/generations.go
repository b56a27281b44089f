package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/novavoice-backend/internal/models"
)

// CreateGeneration вставляет запись об успешной генерации и возвращает её ID.
func (s *Storage) CreateGeneration(ctx context.Context, gen models.Generation) (int, error) {
	const op = "storage.CreateGeneration"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO generations (user_uid, voice_id, input_text, speed, pitch, emotion, audio_path)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		gen.UserUID, gen.VoiceID, gen.Text, gen.Speed, gen.Pitch,
		gen.Emotion, gen.AudioPath).Scan(&newID)
	if err != nil {
		return 0, translateError(op, err)
	}
	return newID, nil
}

// GetGeneration возвращает запись генерации по её ID.
func (s *Storage) GetGeneration(ctx context.Context, id int) (*models.Generation, error) {
	const op = "storage.GetGeneration"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT g.id, g.user_uid, g.voice_id, COALESCE(v.name, ''), g.input_text,
			      g.speed, g.pitch, g.emotion, g.audio_path, g.created_at
			  FROM generations g
			  LEFT JOIN voices v ON v.id = g.voice_id
			  WHERE g.id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	g, err := scanGeneration(row)
	if err != nil {
		return nil, translateError(op, err)
	}
	return g, nil
}

// ListGenerations возвращает историю генераций пользователя, новые записи первыми.
func (s *Storage) ListGenerations(ctx context.Context, userUID string, limit, offset int) ([]*models.Generation, error) {
	const op = "storage.ListGenerations"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT g.id, g.user_uid, g.voice_id, COALESCE(v.name, ''), g.input_text,
			      g.speed, g.pitch, g.emotion, g.audio_path, g.created_at
			  FROM generations g
			  LEFT JOIN voices v ON v.id = g.voice_id
			  WHERE g.user_uid = $1
			  ORDER BY g.created_at DESC, g.id DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// scanGeneration читает строку истории. Голос мог быть удалён после
// генерации: voice_id тогда NULL, имя голоса пустое.
func scanGeneration(row rowScanner) (*models.Generation, error) {
	var g models.Generation
	var voiceID sql.NullInt64
	if err := row.Scan(&g.ID, &g.UserUID, &voiceID, &g.VoiceName, &g.Text,
		&g.Speed, &g.Pitch, &g.Emotion, &g.AudioPath, &g.CreatedAt); err != nil {
		return nil, err
	}
	if voiceID.Valid {
		g.VoiceID = int(voiceID.Int64)
	}
	return &g, nil
}

// RemoveGeneration удаляет запись генерации по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveGeneration(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveGeneration"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM generations WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
