package models

import "time"

// Payment — квитанция о симулированной оплате смены тарифа.
// Реальный платёжный шлюз не вызывается, запись хранит маскированный метод
// оплаты и сгенерированный идентификатор транзакции.
type Payment struct {
	ID            int       `json:"id"`
	UserUID       string    `json:"user_uid"`
	Tier          Tier      `json:"tier"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"` // Например "Simulated Card **** 4242"
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}
