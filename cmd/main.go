package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flatgripe/backend/internal/api/handler"
	"flatgripe/backend/internal/auth"
	"flatgripe/backend/internal/complaint"
	"flatgripe/backend/internal/config"
	"flatgripe/backend/internal/logger"
	"flatgripe/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func setupDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, *redis.Client, error) {
	// 1. База даних (PostgreSQL або SQLite для локального запуску)
	db, err := storage.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	// 2. Міграції (Створення таблиць)
	if err := storage.Migrate(db); err != nil {
		return nil, nil, err
	}

	// 3. Redis необов'язковий: без нього блокування квартир локальні
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
	}

	log.Info().Str("db", cfg.Database.Type).Bool("redis", rdb != nil).Msg("database connected, migrations complete")
	return db, rdb, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.NewConsole("info")
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, os.Stdout)
	if cfg.Debug {
		log = logger.NewConsole(cfg.LogLevel)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info().Msg("Starting FlatGripe Backend...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Ініціалізація залежностей
	db, rdb, err := setupDependencies(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up dependencies")
	}
	s := storage.NewStorageService(db, rdb)

	if cfg.SeedDefaultFlat {
		flat, err := s.EnsureDefaultFlat(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed default flat")
		}
		log.Info().Str("code", flat.Code).Msg("default flat ready")
	}

	var locker storage.FlatLocker = storage.NewLocalLocker()
	if rdb != nil {
		redisLocker := storage.NewRedisLocker(rdb)
		redisLocker.OnRelease = func(flatID uint, err error) {
			log.Warn().Err(err).Uint("flat_id", flatID).Msg("flat lock release failed")
		}
		locker = redisLocker
	}

	// 2. Сервіси
	complaints := complaint.NewService(s, locker, log)
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authSvc := auth.NewService(s, tokens, cfg.Auth.BcryptCost, log)

	// 3. Запуск фонового архіватора
	sweeper := complaint.NewSweeper(complaints, cfg.ArchiveInterval, log)
	go sweeper.Run(ctx)

	// 4. Налаштування Gin та роутингу
	h := handler.NewHandler(complaints, authSvc, s, log)

	server := &http.Server{
		Addr:           cfg.Server.Addr(),
		Handler:        h.NewRouter(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
