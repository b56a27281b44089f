// Package subscription содержит бизнес-логику симулированной смены тарифа.
//
// Платёжный шлюз не вызывается: токен оплаты проверяется только
// синтаксически, смена тарифа — чистый переход tier → tier с записью
// квитанции. Точка интеграции реального платежа изолирована здесь.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/novavoice-backend/internal/lib/sl"
	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/notifier"
)

// Доменные ошибки подписок.
var (
	// ErrUnknownTier — запрошенный тариф не входит в перечисление.
	ErrUnknownTier = errors.New("unknown subscription tier")
	// ErrBadPaymentToken — токен оплаты синтаксически некорректен.
	ErrBadPaymentToken = errors.New("malformed payment token")
)

// Симулированный токен оплаты: префикс tok_ или sim_ и не короче
// восьми алфавитно-цифровых символов.
var paymentTokenRe = regexp.MustCompile(`^(?:tok|sim)_[A-Za-z0-9]{8,}$`)

// Repository определяет методы хранилища для смены тарифа.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	UpdateTier(ctx context.Context, userUID string, tier models.Tier) error
	CreatePayment(ctx context.Context, payment models.Payment) (int, error)
	ListPayments(ctx context.Context, userUID string) ([]*models.Payment, error)
}

// ReceiptPublisher публикует квитанции во внешнюю очередь уведомлений.
type ReceiptPublisher interface {
	PublishReceipt(receipt notifier.Receipt) error
}

// Service реализует симулированную смену тарифа.
type Service struct {
	repo      Repository
	publisher ReceiptPublisher // nil, если уведомления отключены
	log       *slog.Logger
}

// New создает новый экземпляр Service. Publisher может быть nil.
func New(repo Repository, publisher ReceiptPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Upgrade переводит пользователя на целевой тариф.
//
// Токен оплаты проверяется только на форму. Суточный счётчик сбрасывается,
// поэтому новый лимит и доступ к клонированию действуют со следующего запроса.
func (s *Service) Upgrade(ctx context.Context, userUID string, target models.Tier, paymentToken, cardNumber string) (*models.Payment, error) {
	if !target.Valid() {
		return nil, ErrUnknownTier
	}
	if !paymentTokenRe.MatchString(paymentToken) {
		return nil, ErrBadPaymentToken
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTier(ctx, userUID, target); err != nil {
		return nil, err
	}

	payment := models.Payment{
		UserUID:       userUID,
		Tier:          target,
		Amount:        target.Price(),
		Method:        maskedMethod(cardNumber),
		TransactionID: "SIM_TXN_" + uuid.New().String(),
	}
	id, err := s.repo.CreatePayment(ctx, payment)
	if err != nil {
		return nil, err
	}
	payment.ID = id
	payment.CreatedAt = time.Now().UTC()

	s.log.Info("tier upgraded",
		slog.String("user_uid", userUID),
		slog.String("tier", string(target)),
		slog.String("transaction_id", payment.TransactionID))

	if s.publisher != nil {
		receipt := notifier.Receipt{
			UserUID:       userUID,
			Username:      user.Username,
			Tier:          string(target),
			Amount:        payment.Amount,
			TransactionID: payment.TransactionID,
			CreatedAt:     payment.CreatedAt,
		}
		if err := s.publisher.PublishReceipt(receipt); err != nil {
			// Уведомления не влияют на результат смены тарифа.
			s.log.Warn("failed to publish payment receipt", sl.Err(err))
		}
	}

	return &payment, nil
}

// Receipts возвращает квитанции пользователя, новые записи первыми.
func (s *Service) Receipts(ctx context.Context, userUID string) ([]*models.Payment, error) {
	return s.repo.ListPayments(ctx, userUID)
}

// maskedMethod формирует маскированное описание метода оплаты для квитанции.
func maskedMethod(cardNumber string) string {
	last4 := "0000"
	if len(cardNumber) >= 4 {
		last4 = cardNumber[len(cardNumber)-4:]
	}
	return fmt.Sprintf("Simulated Card **** %s", last4)
}
