// Package audio реализует HTTP-обработчик выдачи аудиофайла генерации.
//
// Handler проверяет владение записью через бизнес-логику и отдает WAV-файл
// потоком с поддержкой Range-запросов.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/novavoice-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/response"
	"github.com/magabrotheeeer/novavoice-backend/internal/lib/sl"
	"github.com/magabrotheeeer/novavoice-backend/internal/models"
	"github.com/magabrotheeeer/novavoice-backend/internal/services/history"
)

// Handler обрабатывает запросы аудио из истории.
type Handler struct {
	log       *slog.Logger
	service   Service
	artifacts ArtifactStore
}

// Service описывает интерфейс бизнес-логики истории.
type Service interface {
	GetAudio(ctx context.Context, userUID string, generationID int) (*models.Generation, error)
}

// ArtifactStore открывает сохранённые аудиофайлы.
type ArtifactStore interface {
	Open(path string) (io.ReadSeekCloser, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, artifacts ArtifactStore) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		artifacts: artifacts,
	}
}

// ServeHTTP отдает WAV-файл генерации после проверки владения.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.history.audio"

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

	gen, err := h.service.GetAudio(r.Context(), userUID, id)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			log.Error("generation not found", slog.Int("generation_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("generation not found"))
			return
		}
		log.Error("failed to read generation", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read generation"))
		return
	}

	file, err := h.artifacts.Open(gen.AudioPath)
	if err != nil {
		log.Error("failed to open audio file", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not open audio file"))
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=generation_%d.wav", gen.ID))
	http.ServeContent(w, r, fmt.Sprintf("generation_%d.wav", gen.ID), gen.CreatedAt, file)
}
