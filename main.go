package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arg-server/internal/archive"
	"github.com/robalobadob/arg-server/internal/config"
	"github.com/robalobadob/arg-server/internal/controller"
	"github.com/robalobadob/arg-server/internal/generator"
	"github.com/robalobadob/arg-server/internal/httpserver"
	"github.com/robalobadob/arg-server/internal/observability"
	"github.com/robalobadob/arg-server/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx := context.Background()

	shutdown, err := observability.InitTracing(ctx, cfg.TracingEnabled)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracing")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(c)
	}()

	// Generator failures are not fatal: the server still starts and
	// /generate_story reports the generator as unavailable.
	gen := generator.New(ctx, cfg.Generator())
	defer generator.Close(gen)

	sessions := store.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		sessions = store.NewRedisStore(rdb, cfg.SessionTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("sessions in redis")
	}

	var ar controller.Archive
	if cfg.DBPath != "" {
		db, err := archive.Open(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open archive")
		}
		defer db.Close()
		ar = archive.NewStore(db)
	}

	ctl := controller.New(gen, sessions, ar)
	srv, err := httpserver.New(ctl, httpserver.Options{
		JWTSecret:         cfg.JWTSecret,
		ClientOrigin:      cfg.ClientOrigin,
		SecureCookies:     cfg.SecureCookies,
		RedactSolutions:   cfg.RedactSolutions,
		GenerationTimeout: cfg.GenerationTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	log.Info().Str("port", cfg.Port).Msg("starting arg-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
