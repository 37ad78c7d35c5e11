package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/brightclass/aigateway/internal/config"
	"github.com/brightclass/aigateway/internal/content"
	"github.com/brightclass/aigateway/internal/db"
	dbsqlc "github.com/brightclass/aigateway/internal/db/sqlc"
	"github.com/brightclass/aigateway/internal/handlers"
	"github.com/brightclass/aigateway/internal/llm"
	"github.com/brightclass/aigateway/internal/logger"
	"github.com/brightclass/aigateway/internal/server"
	"github.com/brightclass/aigateway/internal/session"
	"github.com/brightclass/aigateway/internal/tutor"
	"github.com/brightclass/aigateway/internal/usage"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			provideDBQueries,
			provideBlobStore,
			provideContentResolver,
			provideLLMClient,
			session.NewRegistry,
			provideUsageService,
			provideTutorService,
			handlers.NewPingHandler,
			handlers.NewTutorHandler,
			handlers.NewUsageHandler,
			provideServer,
		),
		fx.Invoke(
			startSessionSweeper,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideConfig() (config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.Postgres); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideDBQueries(conn *pgxpool.Pool) *dbsqlc.Queries { return dbsqlc.New(conn) }

func provideBlobStore(lc fx.Lifecycle) (content.BlobStore, error) {
	client, err := storage.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return client.Close() }})
	return content.NewGCSStore(client), nil
}

func provideContentResolver(log *slog.Logger, store content.BlobStore) *content.Resolver {
	return content.NewResolver(log, store)
}

func provideLLMClient(cfg config.Config) (llm.Client, error) {
	client, err := llm.NewVertexClient(context.Background(),
		cfg.Vertex.ProjectID, cfg.Vertex.Location, cfg.Vertex.Model, cfg.Vertex.Timeout())
	if err != nil {
		return nil, fmt.Errorf("vertex client: %w", err)
	}
	return client, nil
}

func provideUsageService(log *slog.Logger, queries *dbsqlc.Queries) *usage.Service {
	return usage.NewService(log, queries)
}

func provideTutorService(log *slog.Logger, cfg config.Config, registry *session.Registry, resolver *content.Resolver, client llm.Client, usageService *usage.Service) *tutor.Service {
	return tutor.NewService(log, registry, resolver, client, cfg.Vertex.Model, usageService)
}

func provideServer(log *slog.Logger, cfg config.Config, pingHandler *handlers.PingHandler, tutorHandler *handlers.TutorHandler, usageHandler *handlers.UsageHandler) *server.Server {
	return server.NewServer(log, cfg.Server.Addr, cfg.Auth.JWTSecret, pingHandler, tutorHandler, usageHandler)
}

func startSessionSweeper(lc fx.Lifecycle, logger *slog.Logger, cfg config.Config, registry *session.Registry) error {
	ttl := cfg.Sessions.IdleTTLDuration()
	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", cfg.Sessions.SweepInterval()), func() {
		if removed := registry.SweepIdle(ttl); removed > 0 {
			logger.Info("swept idle conversations", slog.Int("removed", removed))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { c.Start(); return nil },
		OnStop:  func(ctx context.Context) error { <-c.Stop().Done(); return nil },
	})
	return nil
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
	})
}
