package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/proplanet/ecoledger"
	fiberadapter "github.com/proplanet/ecoledger/adapters/fiber"
	"github.com/proplanet/ecoledger/adapters/openai"
	"github.com/proplanet/ecoledger/adapters/rediscache"
	"github.com/proplanet/ecoledger/core"
	"github.com/proplanet/ecoledger/pkg/config"
	"github.com/proplanet/ecoledger/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, !skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply the schema on startup")

	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the storage schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, closeDB, err := openStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := migrate(cmd.Context(), db); err != nil {
				return err
			}
			slog.Info("schema is up to date", "driver", cfg.StorageDriver)
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, runMigrations bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	if runMigrations {
		if err := migrate(ctx, db); err != nil {
			return err
		}
	}

	recorder := metrics.New()

	var cache core.CacheWithStats
	if cfg.RedisAddr != "" {
		redisCache := rediscache.New(rediscache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return err
		}
		slog.Info("using redis session cache", "addr", cfg.RedisAddr)
		cache = redisCache
	} else {
		cache = core.NewInMemoryCache(core.CacheConfig{TTL: cfg.CacheTTL, MaxSize: cfg.CacheMaxSize})
	}
	recorder.WatchCache(cache)

	var chat core.ChatStreamer
	if cfg.ChatEnabled() {
		chat = openai.New(openai.Config{
			BaseURL: cfg.ChatGatewayURL,
			APIKey:  cfg.ChatAPIKey,
			Model:   cfg.ChatModel,
		})
	} else {
		slog.Warn("CHAT_API_KEY not set, assistant relay disabled")
	}

	app := fiber.New(fiber.Config{AppName: cfg.AppName})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time}|${status}|${latency}|${ip}|${method}|${path}|${error}\n",
		TimeFormat: "2006/01/02 15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.FrontendURL, ","),
		AllowCredentials: true,
		ExposeHeaders:    []string{fiberadapter.BoardHeader},
	}))

	delay := cfg.RedemptionDelay
	_, err = ecoledger.New(ecoledger.Config{
		Database:        db,
		HTTP:            fiberadapter.New(app).WithMetrics(recorder.Handler()),
		CacheAdapter:    cache,
		SessionConfig:   &ecoledger.SessionConfig{MaxAge: cfg.SessionMaxAge},
		BoardConfig:     &ecoledger.BoardConfig{TTL: cfg.BoardTTL, MaxSize: cfg.BoardMax},
		Chat:            chat,
		Recorder:        recorder,
		Logger:          slog.Default(),
		RedemptionDelay: &delay,
		BasePath:        cfg.BasePath,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "port", cfg.Port, "base_path", cfg.BasePath)
		errCh <- app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
