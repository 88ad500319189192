// Package evently собирает зависимости основного приложения:
// хранилище, кэш, очередь уведомлений, клиент сервиса чеканки,
// доменные сервисы и HTTP-сервер.
package evently

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/Chinmaya-shah/evently-backend/internal/cache"
	"github.com/Chinmaya-shah/evently-backend/internal/chainservice"
	"github.com/Chinmaya-shah/evently-backend/internal/config"
	"github.com/Chinmaya-shah/evently-backend/internal/lib/jwt"
	"github.com/Chinmaya-shah/evently-backend/internal/migrations"
	"github.com/Chinmaya-shah/evently-backend/internal/rabbitmq"
	authservice "github.com/Chinmaya-shah/evently-backend/internal/services/auth"
	eventservice "github.com/Chinmaya-shah/evently-backend/internal/services/event"
	notifierservice "github.com/Chinmaya-shah/evently-backend/internal/services/notifier"
	ticketservice "github.com/Chinmaya-shah/evently-backend/internal/services/ticket"
	"github.com/Chinmaya-shah/evently-backend/internal/storage/repository"
)

type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	rabbitCh *amqp.Channel
	rabbit   *amqp.Connection
}

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

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.ConnRetries, cfg.ConnRetryWait)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetNotificationQueues())
	if err != nil {
		return nil, err
	}

	chainClient := chainservice.NewClient(cfg.ChainURL, cfg.ChainAPIKey, cfg.ChainTimeout)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker)
	eventService := eventservice.New(db, cacheRedis, logger)
	notifierService := notifierservice.New(rabbitCh)
	ticketService := ticketservice.New(db, db, db, chainClient, notifierService,
		cacheRedis, cfg.DefaultWalletAddress, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, eventService, ticketService, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		rabbitCh: rabbitCh,
		rabbit:   rabbitConn,
	}, nil
}

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
		a.rabbitCh.Close()
		a.rabbit.Close()
		a.db.DB.Close()
		return err
	}
}
