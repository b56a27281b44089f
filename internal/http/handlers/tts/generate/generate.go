// Package generate реализует HTTP-обработчик генерации речи.
//
// Handler валидирует параметры синтеза, вызывает бизнес-логику генерации
// и возвращает запись истории со ссылкой на аудиофайл.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/novavoice-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/response"
	"github.com/magabrotheeeer/novavoice-backend/internal/lib/sl"
	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/services/tts"
)

// Request — параметры запроса синтеза
type Request struct {
	Text    string  `json:"text" validate:"required,max=5000"`
	VoiceID int     `json:"voice_id" validate:"required"`
	Speed   float64 `json:"speed" validate:"omitempty,gte=0.5,lte=2.0"`
	Pitch   float64 `json:"pitch" validate:"omitempty,gte=0.5,lte=2.0"`
	Emotion string  `json:"emotion" validate:"omitempty,oneof=neutral happy sad"`
}

// Handler обрабатывает запросы генерации речи.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики генерации.
type Service interface {
	Generate(ctx context.Context, userUID, text string, voiceID int, params models.GenerationParams) (*models.Generation, error)
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
// @Summary Сгенерировать речь
// @Description Синтезирует речь по тексту выбранным голосом. Расходует одну генерацию суточной квоты тарифа.
// @Tags TTS
// @Accept  json
// @Produce  json
// @Param request body Request true "Параметры синтеза"
// @Success 200 {object} map[string]any "Запись истории с идентификатором аудио"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Голос не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Суточный лимит генераций исчерпан"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /tts/generate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tts.generate"

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
	log.Info("request body decoded", slog.Int("voice_id", req.VoiceID))

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

	gen, err := h.service.Generate(r.Context(), userUID, req.Text, req.VoiceID, models.GenerationParams{
		Speed:   req.Speed,
		Pitch:   req.Pitch,
		Emotion: req.Emotion,
	})
	if err != nil {
		switch {
		case errors.Is(err, tts.ErrQuotaExceeded):
			log.Error("daily quota exceeded", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Error("daily generation limit reached"))
		case errors.Is(err, tts.ErrVoiceNotFound):
			log.Error("voice not found", slog.Int("voice_id", req.VoiceID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("voice not found"))
		default:
			log.Error("generation failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to generate speech"))
		}
		return
	}

	log.Info("speech generated", slog.Int("generation_id", gen.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"generation": gen,
		"audio_url":  fmt.Sprintf("/api/v1/history/%d/audio", gen.ID),
	}))
}
