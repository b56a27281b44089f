// Package upgrade реализует HTTP-обработчик смены тарифа.
//
// Handler принимает целевой тариф и симулированный платёжный токен,
// вызывает бизнес-логику смены тарифа и возвращает квитанцию.
package upgrade

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/novavoice-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/response"
	"github.com/magabrotheeeer/novavoice-backend/internal/lib/sl"
	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/services/subscription"
)

// Request — данные запроса смены тарифа
type Request struct {
	Tier         string `json:"tier" validate:"required,oneof=Basic Premium Ultimate"`
	PaymentToken string `json:"payment_token" validate:"required"`
	CardNumber   string `json:"card_number" validate:"required,numeric,min=12,max=19"`
}

// Handler обрабатывает запросы смены тарифа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики смены тарифа.
type Service interface {
	Upgrade(ctx context.Context, userUID string, target models.Tier, paymentToken, cardNumber string) (*models.Payment, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сменить тариф
// @Description Переводит пользователя на целевой тариф по симулированному платёжному токену. Суточная квота сбрасывается.
// @Tags Subscription
// @Accept  json
// @Produce  json
// @Param request body Request true "Целевой тариф и платёжные данные"
// @Success 200 {object} map[string]any "Квитанция об оплате"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или платёжный токен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /subscription/upgrade [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.upgrade"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("tier", req.Tier))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	payment, err := h.service.Upgrade(r.Context(), userUID, models.Tier(req.Tier), req.PaymentToken, req.CardNumber)
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrBadPaymentToken):
			log.Error("malformed payment token")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("malformed payment token"))
		case errors.Is(err, subscription.ErrUnknownTier):
			log.Error("unknown tier", slog.String("tier", req.Tier))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown subscription tier"))
		default:
			log.Error("failed to upgrade tier", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to upgrade tier"))
		}
		return
	}

	log.Info("tier upgraded",
		slog.String("tier", req.Tier),
		slog.String("transaction_id", payment.TransactionID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"payment": payment,
	}))
}
