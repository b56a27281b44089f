// Package models содержит доменную модель пользователя сервиса озвучки,
// включающую данные учётной записи, хэш пароля, тариф и суточный счётчик
// генераций. Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Tier — тарифный план пользователя. Определяет суточный лимит генераций
// и доступ к клонированию голоса.
type Tier string

const (
	// TierBasic — бесплатный тариф, 10 генераций в сутки, без клонирования.
	TierBasic Tier = "Basic"
	// TierPremium — платный тариф, 100 генераций в сутки, клонирование доступно.
	TierPremium Tier = "Premium"
	// TierUltimate — максимальный тариф, 1000 генераций в сутки.
	TierUltimate Tier = "Ultimate"
)

// DailyLimit возвращает суточный лимит генераций для тарифа.
func (t Tier) DailyLimit() int {
	switch t {
	case TierPremium:
		return 100
	case TierUltimate:
		return 1000
	default:
		return 10
	}
}

// AllowsCloning сообщает, открыто ли тарифу клонирование голоса.
func (t Tier) AllowsCloning() bool {
	return t == TierPremium || t == TierUltimate
}

// Price возвращает условную месячную цену тарифа. Платежи симулируются,
// сумма нужна только для записи в квитанцию.
func (t Tier) Price() float64 {
	switch t {
	case TierPremium:
		return 9.99
	case TierUltimate:
		return 29.99
	default:
		return 0
	}
}

// Valid проверяет, что значение тарифа входит в известное перечисление.
func (t Tier) Valid() bool {
	return t == TierBasic || t == TierPremium || t == TierUltimate
}

// User представляет зарегистрированного пользователя сервиса.
type User struct {
	UUID            string    // Уникальный идентификатор пользователя
	Username        string    // Имя пользователя (уникальное)
	Email           string    // Электронная почта (уникальная)
	PasswordHash    string    // Хэш пароля пользователя
	Tier            Tier      // Текущий тарифный план
	GenerationsUsed int       // Количество генераций за текущие сутки
	UsageDate       time.Time // Дата, к которой относится счётчик генераций
	CreatedAt       time.Time
}

// GenerationsLeft возвращает остаток генераций на сегодня.
// Если счётчик относится к прошлым суткам, лимит считается нетронутым.
// Значение DATE приходит из базы как полночь UTC, поэтому обе даты
// сравниваются в UTC, иначе возле полуночи остаток съезжает на сутки.
func (u *User) GenerationsLeft(today time.Time) int {
	limit := u.Tier.DailyLimit()
	if u.UsageDate.UTC().Format("2006-01-02") != today.UTC().Format("2006-01-02") {
		return limit
	}
	left := limit - u.GenerationsUsed
	if left < 0 {
		return 0
	}
	return left
}
