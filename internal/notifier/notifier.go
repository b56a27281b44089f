// Package notifier публикует события о симулированных платежах в RabbitMQ.
//
// Публикация сделана best-effort: сервис подписок не зависит от брокера,
// при пустом URL в конфиге уведомления просто отключаются.
package notifier

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

const (
	exchangeName = "novavoice.payments"
	routingKey   = "payment.receipt"
)

// Receipt — событие о смене тарифа, уходящее в очередь уведомлений.
type Receipt struct {
	UserUID       string    `json:"user_uid"`
	Username      string    `json:"username"`
	Tier          string    `json:"tier"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Notifier держит соединение и канал RabbitMQ.
type Notifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// New подключается к RabbitMQ и объявляет exchange для квитанций.
func New(url string) (*Notifier, error) {
	const op = "notifier.New"

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Notifier{conn: conn, channel: ch}, nil
}

// PublishReceipt публикует квитанцию о платеже.
func (n *Notifier) PublishReceipt(receipt Receipt) error {
	const op = "notifier.PublishReceipt"

	body, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = n.channel.Publish(
		exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал и соединение.
func (n *Notifier) Close() error {
	if err := n.channel.Close(); err != nil {
		_ = n.conn.Close()
		return err
	}
	return n.conn.Close()
}
