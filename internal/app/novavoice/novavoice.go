// Package novavoice собирает все компоненты сервиса озвучки в одно
// приложение: хранилище, кэш, движок синтеза, сервисы и HTTP-сервер.
package novavoice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/novavoice-backend/internal/artifacts"
	"github.com/magabrotheeeer/novavoice-backend/internal/cache"
	"github.com/magabrotheeeer/novavoice-backend/internal/config"
	"github.com/magabrotheeeer/novavoice-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/novavoice-backend/internal/lib/sl"
	"github.com/magabrotheeeer/novavoice-backend/internal/migrations"
	"github.com/magabrotheeeer/novavoice-backend/internal/notifier"
	"github.com/magabrotheeeer/novavoice-backend/internal/sessions"
	authservice "github.com/magabrotheeeer/novavoice-backend/internal/services/auth"
	historyservice "github.com/magabrotheeeer/novavoice-backend/internal/services/history"
	subscriptionservice "github.com/magabrotheeeer/novavoice-backend/internal/services/subscription"
	ttsservice "github.com/magabrotheeeer/novavoice-backend/internal/services/tts"
	voiceservice "github.com/magabrotheeeer/novavoice-backend/internal/services/voice"
	"github.com/magabrotheeeer/novavoice-backend/internal/storage/repository"
	"github.com/magabrotheeeer/novavoice-backend/internal/ttsengine"
)

// App инкапсулирует HTTP-сервер и ресурсы, требующие закрытия.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	notifier *notifier.Notifier // nil, если публикация квитанций отключена
}

// New инициализирует приложение: подключает базу, прогоняет миграции,
// поднимает кэш, хранилище артефактов и движок синтеза, связывает сервисы
// с обработчиками.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	artifactStore, err := artifacts.New(cfg.Artifacts.GeneratedAudioDir, cfg.Artifacts.VoiceSamplesDir)
	if err != nil {
		return nil, err
	}

	var receiptNotifier *notifier.Notifier
	if cfg.RabbitURL != "" {
		receiptNotifier, err = notifier.New(cfg.RabbitURL)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Info("rabbit url is empty, receipt publishing disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	sessionStore := sessions.New(cacheRedis, jwtMaker.TTL())
	engineClient := ttsengine.New(cfg.SpeechEngine.EngineURL, cfg.SpeechEngine.EngineTimeout)

	authSvc := authservice.New(db, jwtMaker, sessionStore)
	voiceSvc := voiceservice.New(db, db, artifactStore, cacheRedis, logger)
	ttsSvc := ttsservice.New(db, engineClient, artifactStore, logger)
	historySvc := historyservice.New(db, artifactStore, logger)
	var publisher subscriptionservice.ReceiptPublisher
	if receiptNotifier != nil {
		publisher = receiptNotifier
	}
	subscriptionSvc := subscriptionservice.New(db, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authSvc,
		Voice:        voiceSvc,
		TTS:          ttsSvc,
		History:      historySvc,
		Subscription: subscriptionSvc,
		Storage:      db,
		Artifacts:    artifactStore,
		Engine:       engineClient,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		notifier: receiptNotifier,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.notifier != nil {
			if closeErr := a.notifier.Close(); closeErr != nil {
				a.logger.Warn("failed to close notifier", sl.Err(closeErr))
			}
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Warn("failed to close database", sl.Err(closeErr))
		}
		return err
	}
}
