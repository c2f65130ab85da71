// @title                       Job Board API
// @version                     1.0
// @description                 Accounts, credential lifecycle, CV storage and location lookup for the job board.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jobportal/jobboard-api/internal/api"
	"github.com/jobportal/jobboard-api/internal/core/ports"
	"github.com/jobportal/jobboard-api/internal/core/service"
	mongodb "github.com/jobportal/jobboard-api/internal/infrastructure/db/mongo"
	redisdb "github.com/jobportal/jobboard-api/internal/infrastructure/db/redis"
	"github.com/jobportal/jobboard-api/internal/infrastructure/http/handlers"
	"github.com/jobportal/jobboard-api/internal/infrastructure/mail"
	"github.com/jobportal/jobboard-api/internal/infrastructure/queue"
	"github.com/jobportal/jobboard-api/internal/infrastructure/storage/s3"
	"github.com/jobportal/jobboard-api/internal/infrastructure/weather"
	"github.com/jobportal/jobboard-api/internal/pkg/config"
	"github.com/jobportal/jobboard-api/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	resetLockTTL    = 30 * time.Second
	weatherTimeout  = 10 * time.Second
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "jobboard-api",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	users := mongodb.NewUserRepository(db)
	ledger := mongodb.NewResetLedger(db)
	// Ledger entries are only read inside the reset window; keep a day of slack.
	if err := mongodb.EnsureIndexes(ctx, users, ledger, cfg.Auth.ResetWindow+24*time.Hour); err != nil {
		return err
	}

	checks := map[string]handlers.Check{"mongo": handlers.MongoCheck(db)}

	// --- Redis (optional) ---
	var (
		locker ports.ResetLocker
		cache  ports.Cache
	)
	if cfg.Redis.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		locker = redisdb.NewResetLock(rdb, resetLockTTL)
		cache = redisdb.NewCache(rdb, "jobboard:")
		checks["redis"] = handlers.RedisCheck(rdb)
	} else {
		log.Warn().Msg("redis disabled: reset lock and location cache are off")
	}

	// --- Outbound adapters ---
	mailer, err := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
	})
	if err != nil {
		return err
	}

	store, err := s3.NewStore(ctx, s3.Config{
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	})
	if err != nil {
		return err
	}

	reaper := queue.NewReaper(cfg.Storage.CleanupWorkers, store, log)
	// Workers outlive the signal so Stop can drain queued deletes.
	reaper.Start(context.WithoutCancel(ctx))
	defer reaper.Stop()

	weatherClient := weather.NewClient(cfg.Location.APIKey, cfg.Location.BaseURL, &http.Client{Timeout: weatherTimeout})

	// --- Services ---
	clock := service.SystemClock()
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL, clock)

	authService, err := service.NewAuthService(service.AuthDeps{
		Users:  users,
		Ledger: ledger,
		Locker: locker,
		Hasher: service.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens: tokens,
		Mailer: mailer,
		Clock:  clock,
		Logger: log.With().Str("component", "auth").Logger(),
	}, service.AuthConfig{ResetWindow: cfg.Auth.ResetWindow})
	if err != nil {
		return err
	}

	cvService := service.NewCVService(users, store, reaper, clock, log.With().Str("component", "cv").Logger())
	locationService := service.NewLocationService(weatherClient, cache, cfg.Location.CacheTTL, log.With().Str("component", "location").Logger())

	// --- HTTP ---
	e := api.NewRouter(api.Services{
		Auth:     authService,
		CV:       cvService,
		Location: locationService,
		Tokens:   tokens,
	}, api.Options{
		CORSOrigins:  strings.Split(cfg.CORSOrigin, ","),
		HealthChecks: checks,
		Registerer:   prometheus.DefaultRegisterer,
		Logger:       log,
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	log.Info().Msg("server stopped")
	return nil
}
