// Package health реализует HTTP-обработчик проверки работоспособности:
// доступность базы данных и движка синтеза речи.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/novavoice-backend/internal/http/response"
	"github.com/magabrotheeeer/novavoice-backend/internal/lib/sl"
)

// Pinger проверяет доступность базы данных.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EngineChecker проверяет готовность движка синтеза речи.
type EngineChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler обрабатывает запросы проверки работоспособности.
type Handler struct {
	log    *slog.Logger
	db     Pinger
	engine EngineChecker
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, db Pinger, engine EngineChecker) *Handler {
	return &Handler{
		log:    log,
		db:     db,
		engine: engine,
	}
}

// ServeHTTP возвращает состояние зависимостей сервиса. Недоступный движок
// не валит весь сервис: история и библиотека голосов продолжают работать.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"database": "ok",
		"engine":   "ok",
	}
	healthy := true

	if err := h.db.Ping(r.Context()); err != nil {
		h.log.Error("database is unreachable", sl.Err(err))
		status["database"] = "unreachable"
		healthy = false
	}
	if err := h.engine.HealthCheck(r.Context()); err != nil {
		h.log.Warn("speech engine is not ready", sl.Err(err))
		status["engine"] = "not ready"
	}

	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	render.JSON(w, r, response.OKWithData(status))
}
