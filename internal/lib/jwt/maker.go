// Package jwt реализует генерацию и парсинг JWT токенов сессии.
//
// Каждый токен несёт username, uid пользователя и тариф, а также
// уникальный идентификатор токена (jti), по которому сессия хранится
// в явном хранилище сессий и может быть отозвана при logout.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга токенов сессии.
type Maker interface {
	// GenerateToken создаёт подписанный токен для пользователя и возвращает
	// сам токен и его jti для регистрации сессии.
	GenerateToken(username, userUID, tier string) (token string, tokenID string, err error)
	// ParseToken возвращает *CustomClaims, если подпись и срок действия корректны.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// TTL возвращает время жизни выдаваемых токенов. Используется хранилищем
// сессий, чтобы срок записи совпадал со сроком токена.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
