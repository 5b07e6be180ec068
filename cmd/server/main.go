package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/userhub/directory-api/internal/api"
	"github.com/userhub/directory-api/internal/core/service"
	"github.com/userhub/directory-api/internal/infrastructure/config"
	bundb "github.com/userhub/directory-api/internal/infrastructure/db/bun"
	redisdb "github.com/userhub/directory-api/internal/infrastructure/db/redis"
	"github.com/userhub/directory-api/internal/infrastructure/queue"
	"github.com/userhub/directory-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "directory-api",
	})

	db, err := bundb.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	hasher := service.NewPasswordHasher(cfg.Security.HashRounds)
	seeder := bundb.NewSeeder(
		db,
		bundb.NewUserRepository(db),
		bundb.NewRoleRepository(db),
		hasher,
		bundb.RootAccount{
			FirstName: cfg.Root.FirstName,
			LastName:  cfg.Root.LastName,
			Email:     cfg.Root.Email,
			Password:  cfg.Root.Password,
		},
		log,
	)
	if err := seeder.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("database seeding failed")
	}

	// The cache is optional: without Redis the service reads straight from
	// the database.
	rdb, err := redisdb.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, user view cache disabled")
		rdb = nil
	}

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, bundb.NewAuditRepository(db), log)
	dispatcher.Start(ctx)

	e := api.NewRouter(cfg, db, rdb, dispatcher, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server stopped")
}
