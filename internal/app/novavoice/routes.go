// Package novavoice предоставляет маршруты сервиса озвучки.
package novavoice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/novavoice-backend/internal/artifacts"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/health"
	historyaudio "github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/history/audio"
	historylist "github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/history/list"
	historyremove "github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/history/remove"
	paymentlist "github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/payment/list"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/subscription/upgrade"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/tts/generate"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/user/me"
	voiceclone "github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/voice/clone"
	voicelist "github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/voice/list"
	voiceremove "github.com/magabrotheeeer/novavoice-backend/internal/http/handlers/voice/remove"
	"github.com/magabrotheeeer/novavoice-backend/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/novavoice-backend/internal/services/auth"
	historyservice "github.com/magabrotheeeer/novavoice-backend/internal/services/history"
	subscriptionservice "github.com/magabrotheeeer/novavoice-backend/internal/services/subscription"
	ttsservice "github.com/magabrotheeeer/novavoice-backend/internal/services/tts"
	voiceservice "github.com/magabrotheeeer/novavoice-backend/internal/services/voice"
	"github.com/magabrotheeeer/novavoice-backend/internal/storage/repository"
	"github.com/magabrotheeeer/novavoice-backend/internal/ttsengine"
)

// Services объединяет зависимости, необходимые маршрутам.
type Services struct {
	Auth         *authservice.Service
	Voice        *voiceservice.Service
	TTS          *ttsservice.Service
	History      *historyservice.Service
	Subscription *subscriptionservice.Service
	Storage      *repository.Storage
	Artifacts    *artifacts.Store
	Engine       *ttsengine.Client
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/logout", logout.New(logger, svc.Auth).ServeHTTP)
			r.Get("/users/me", me.New(logger, svc.Storage).ServeHTTP)
			r.Get("/voices", voicelist.New(logger, svc.Voice).ServeHTTP)
			r.Post("/voice/clone", voiceclone.New(logger, svc.Voice).ServeHTTP)
			r.Delete("/voices/{id}", voiceremove.New(logger, svc.Voice).ServeHTTP)
			r.Post("/tts/generate", generate.New(logger, svc.TTS).ServeHTTP)
			r.Get("/history", historylist.New(logger, svc.History).ServeHTTP)
			r.Get("/history/{id}/audio", historyaudio.New(logger, svc.History, svc.Artifacts).ServeHTTP)
			r.Delete("/history/{id}", historyremove.New(logger, svc.History).ServeHTTP)
			r.Post("/subscription/upgrade", upgrade.New(logger, svc.Subscription).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, svc.Subscription).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, svc.Storage, svc.Engine).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
