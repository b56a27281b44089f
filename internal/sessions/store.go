// Package sessions реализует явное хранилище сессий поверх кеша.
//
// Сессия привязывается к jti выданного JWT и живёт ровно столько же,
// сколько сам токен. Logout удаляет запись, после чего токен перестаёт
// приниматься, даже если его подпись и срок действия ещё корректны.
package sessions

import (
	"fmt"
	"time"
)

// KV описывает минимальный контракт хранилища ключ-значение с TTL.
type KV interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Session — запись о живой сессии пользователя.
type Session struct {
	UserUID   string    `json:"user_uid"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Store хранит сессии, ключ формируется из jti токена.
type Store struct {
	kv  KV
	ttl time.Duration
}

// New создаёт Store с заданным временем жизни сессий.
func New(kv KV, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

func sessionKey(tokenID string) string {
	return fmt.Sprintf("session:%s", tokenID)
}

// Save регистрирует сессию для выданного токена.
func (s *Store) Save(tokenID, userUID, username string) error {
	session := Session{
		UserUID:   userUID,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	return s.kv.Set(sessionKey(tokenID), session, s.ttl)
}

// Get возвращает сессию по jti токена. Второе значение false означает,
// что сессии нет: она истекла или была отозвана.
func (s *Store) Get(tokenID string) (*Session, bool, error) {
	var session Session
	found, err := s.kv.Get(sessionKey(tokenID), &session)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	return &session, true, nil
}

// Delete отзывает сессию. Используется при logout.
func (s *Store) Delete(tokenID string) error {
	return s.kv.Invalidate(sessionKey(tokenID))
}
