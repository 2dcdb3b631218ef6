package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cimillas/events-api/internal/app"
	"github.com/cimillas/events-api/internal/config"
	"github.com/cimillas/events-api/internal/lib/logger/sl"
	"github.com/cimillas/events-api/internal/storage/mongodb"
	"github.com/cimillas/events-api/internal/storage/postgres"
	transporthttp "github.com/cimillas/events-api/internal/transport/http"
	"github.com/cimillas/events-api/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// store is the process-wide handle behind the event repository.
type store struct {
	repo  app.EventRepository
	ping  transporthttp.PingFunc
	close func()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, log)
	default:
		return openMongo(ctx, cfg, log)
	}
}

func openMongo(ctx context.Context, cfg config.Config, log *slog.Logger) (*store, error) {
	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}

	repo := mongodb.NewEventRepository(client.Database(cfg.MongoDatabase))
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info("connected to mongodb", slog.String("database", cfg.MongoDatabase))

	return &store{
		repo: repo,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("mongodb disconnect", sl.Err(err))
			}
		},
	}, nil
}

func openPostgres(ctx context.Context, cfg config.Config, log *slog.Logger) (*store, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	log.Info("connected to postgres")

	return &store{
		repo:  postgres.NewEventRepository(pool),
		ping:  pool.Ping,
		close: pool.Close,
	}, nil
}
