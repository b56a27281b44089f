// Package clone реализует HTTP-обработчик клонирования голоса.
//
// Handler принимает multipart-форму с полями name, language и файлом sample,
// проверяет тариф через бизнес-логику и регистрирует клонированный голос.
package clone

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/novavoice-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/response"
	"github.com/magabrotheeeer/novavoice-backend/internal/lib/sl"
	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/services/voice"
)

// Лимит размера образца аудио в multipart-форме.
const maxSampleSize = 10 << 20 // 10 MiB

// Request — поля multipart-формы клонирования
type Request struct {
	Name     string `validate:"required,min=1,max=100"`
	Language string `validate:"omitempty,min=2,max=10"`
}

// Handler обрабатывает запросы клонирования голоса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики клонирования.
type Service interface {
	Clone(ctx context.Context, userUID, name, language string, sample []byte, sampleName string) (*models.Voice, error)
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
// @Summary Клонировать голос
// @Description Регистрирует пользовательский голос по образцу аудио. Доступно тарифам Premium и Ultimate.
// @Tags Voices
// @Accept  mpfd
// @Produce  json
// @Param name formData string true "Имя голоса"
// @Param language formData string false "Язык голоса (по умолчанию en-US)"
// @Param sample formData file true "Образец аудио"
// @Success 201 {object} map[string]any "Зарегистрированный голос"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 403 {object} response.ErrorResponse "Тариф не позволяет клонирование"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /voice/clone [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.voice.clone"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := r.ParseMultipartForm(maxSampleSize); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	req := Request{
		Name:     r.FormValue("name"),
		Language: r.FormValue("language"),
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	file, header, err := r.FormFile("sample")
	if err != nil {
		log.Error("sample file is missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("sample file is required"))
		return
	}
	defer file.Close()

	sample, err := io.ReadAll(io.LimitReader(file, maxSampleSize))
	if err != nil {
		log.Error("failed to read sample file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read sample file"))
		return
	}
	log.Info("sample received",
		slog.String("filename", header.Filename),
		slog.Int("size", len(sample)))

	created, err := h.service.Clone(r.Context(), userUID, req.Name, req.Language, sample, header.Filename)
	if err != nil {
		if errors.Is(err, voice.ErrFeatureGated) {
			log.Error("cloning is gated by tier", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("voice cloning requires Premium or Ultimate tier"))
			return
		}
		log.Error("failed to clone voice", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to clone voice"))
		return
	}

	log.Info("voice cloned", slog.Int("voice_id", created.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"voice": created,
	}))
}
