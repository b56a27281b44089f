// Package auth содержит логику бизнес-уровня для регистрации, входа
// и проверки сессий пользователей.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/novavoice-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/novavoice-backend/internal/lib/password"
	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/sessions"
	"github.com/magabrotheeeer/novavoice-backend/internal/storage/repository"
)

// Доменные ошибки аутентификации.
var (
	// ErrUserExists — username или email уже заняты.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials — неизвестный пользователь или неверный пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionRevoked — токен подписан корректно, но сессия отозвана или истекла.
	ErrSessionRevoked = errors.New("session revoked or expired")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// SessionStore описывает явное хранилище сессий.
type SessionStore interface {
	Save(tokenID, userUID, username string) error
	Get(tokenID string) (*sessions.Session, bool, error)
	Delete(tokenID string) error
}

// Service отвечает за регистрацию, авторизацию и валидацию сессий.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	sessions SessionStore
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker, sessionStore SessionStore) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		sessions: sessionStore,
	}
}

// Register создает нового пользователя с хэшированием пароля и тарифом Basic.
func (s *Service) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Tier:         models.TierBasic, // дефолтный тариф при регистрации
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return "", ErrUserExists
		}
		return "", err
	}
	return uid, nil
}

// Login проверяет пароль пользователя, выдаёт JWT и регистрирует сессию.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (string, *models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, tokenID, err := s.jwtMaker.GenerateToken(user.Username, user.UUID, string(user.Tier))
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.Save(tokenID, user.UUID, user.Username); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}
	return token, user, nil
}

// Logout отзывает сессию по токену. Невалидный токен не ошибка:
// клиенту в любом случае нечего отзывать.
func (s *Service) Logout(_ context.Context, tokenStr string) error {
	claims, err := s.jwtMaker.ParseToken(tokenStr)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(claims.ID)
}

// ValidateToken проверяет подпись токена и наличие живой сессии.
func (s *Service) ValidateToken(_ context.Context, tokenStr string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(tokenStr)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	_, found, err := s.sessions.Get(claims.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}
