package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/novavoice-backend/internal/models"
)

// CreateVoice вставляет новую запись клонированного голоса и возвращает её ID.
func (s *Storage) CreateVoice(ctx context.Context, voice models.Voice) (int, error) {
	const op = "storage.CreateVoice"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO voices (user_uid, name, kind, engine_voice, language, sample_path)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		nullableString(voice.UserUID), voice.Name, voice.Kind, voice.EngineVoice,
		voice.Language, nullableString(voice.SamplePath)).Scan(&newID)
	if err != nil {
		return 0, translateError(op, err)
	}
	return newID, nil
}

// GetVoice возвращает голос по его ID.
func (s *Storage) GetVoice(ctx context.Context, id int) (*models.Voice, error) {
	const op = "storage.GetVoice"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, kind, engine_voice, language, sample_path, created_at
			  FROM voices
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	voice, err := scanVoice(row)
	if err != nil {
		return nil, translateError(op, err)
	}
	return voice, nil
}

// ListClonedVoices возвращает клоны, принадлежащие указанному пользователю.
func (s *Storage) ListClonedVoices(ctx context.Context, userUID string) ([]*models.Voice, error) {
	const op = "storage.ListClonedVoices"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, kind, engine_voice, language, sample_path, created_at
			  FROM voices
			  WHERE kind = 'cloned' AND user_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Voice
	for rows.Next() {
		voice, err := scanVoice(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, voice)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListBuiltinVoices возвращает только встроенные пресеты.
func (s *Storage) ListBuiltinVoices(ctx context.Context) ([]*models.Voice, error) {
	const op = "storage.ListBuiltinVoices"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, kind, engine_voice, language, sample_path, created_at
			  FROM voices
			  WHERE kind = 'builtin'
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Voice
	for rows.Next() {
		voice, err := scanVoice(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, voice)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveVoice удаляет голос по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveVoice(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveVoice"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM voices WHERE id = $1`
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

func scanVoice(row rowScanner) (*models.Voice, error) {
	var v models.Voice
	var userUID, samplePath sql.NullString
	if err := row.Scan(&v.ID, &userUID, &v.Name, &v.Kind, &v.EngineVoice,
		&v.Language, &samplePath, &v.CreatedAt); err != nil {
		return nil, err
	}
	if userUID.Valid {
		v.UserUID = userUID.String
	}
	if samplePath.Valid {
		v.SamplePath = samplePath.String
	}
	return &v, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
