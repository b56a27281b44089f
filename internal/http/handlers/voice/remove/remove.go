// Package remove реализует HTTP-обработчик удаления клонированного голоса.
//
// Handler извлекает ID из URL-параметров и вызывает бизнес-логику удаления.
// Встроенные и чужие голоса удалить нельзя.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/novavoice-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/response"
	"github.com/magabrotheeeer/novavoice-backend/internal/lib/sl"
	"github.com/magabrotheeeer/novavoice-backend/internal/services/voice"
)

// Handler обрабатывает запросы удаления голоса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления голоса.
type Service interface {
	Delete(ctx context.Context, userUID string, voiceID int) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP удаляет клонированный голос по ID из URL.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.voice.remove"

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

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	if err := h.service.Delete(r.Context(), userUID, id); err != nil {
		switch {
		case errors.Is(err, voice.ErrNotFound):
			log.Error("voice not found", slog.Int("voice_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("voice not found"))
		case errors.Is(err, voice.ErrForbidden):
			log.Error("voice is not removable by caller", slog.Int("voice_id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("voice is not owned by the caller"))
		default:
			log.Error("failed to remove voice", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to remove voice"))
		}
		return
	}

	log.Info("voice removed", slog.Int("voice_id", id))
	render.JSON(w, r, response.OK())
}
