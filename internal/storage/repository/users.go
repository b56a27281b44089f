package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/novavoice-backend/internal/models"
)

// RegisterUser сохраняет нового пользователя и возвращает его UID.
// При занятом username или email возвращает ErrAlreadyExists.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (username, email, password_hash, tier)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Tier).Scan(&newID); err != nil {
		return "", translateError(op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, password_hash, tier,
			      generations_used, usage_date, created_at
			  FROM users
			  WHERE username = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, username), op)
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, password_hash, tier,
			      generations_used, usage_date, created_at
			  FROM users
			  WHERE uid = $1`
	return s.scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Storage) scanUser(row rowScanner, op string) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.UUID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Tier, &u.GenerationsUsed, &u.UsageDate, &u.CreatedAt); err != nil {
		return nil, translateError(op, err)
	}
	return u, nil
}

// ConsumeGeneration атомарно расходует одну генерацию из суточного лимита.
//
// Счётчик и дата живут в одной строке users, поэтому одиночный условный
// UPDATE закрывает гонку одновременных запросов одного пользователя:
// если дата счётчика не сегодняшняя, счётчик начинается заново с 1,
// иначе инкрементируется только при остатке лимита. Ноль затронутых строк
// означает исчерпанный лимит (или отсутствие пользователя).
func (s *Storage) ConsumeGeneration(ctx context.Context, userUID string, dailyLimit int) (bool, error) {
	const op = "storage.ConsumeGeneration"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET generations_used = CASE
			          WHEN usage_date = CURRENT_DATE THEN generations_used + 1
			          ELSE 1
			      END,
			      usage_date = CURRENT_DATE
			  WHERE uid = $1
			    AND (usage_date <> CURRENT_DATE OR generations_used < $2)`
	result, err := s.DB.ExecContext(ctx, query, userUID, dailyLimit)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// UpdateTier обновляет тариф пользователя и сбрасывает суточный счётчик,
// чтобы новый лимит начал действовать немедленно.
func (s *Storage) UpdateTier(ctx context.Context, userUID string, tier models.Tier) error {
	const op = "storage.UpdateTier"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET tier = $1,
			      generations_used = 0,
			      usage_date = CURRENT_DATE
			  WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, tier, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
