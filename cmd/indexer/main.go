package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wrenchwise/backend/internal/adapters/database"
	"github.com/wrenchwise/backend/internal/adapters/search"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/postgres"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/typesense"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	"github.com/wrenchwise/backend/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(observability.LoggerOptions{
		Service:     "wrenchwise-indexer",
		Version:     cfg.OTEL.ServiceVersion,
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			log.Fatal().Str("interval", intervalValue).Msg("interval must be a positive duration")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset || os.Getenv("RESET_TYPESENSE") == "true"); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			return
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}

	if reset {
		log.Info().Str("collection", tsClient.Collection()).Msg("deleting collection before reindex")
		if _, err := tsClient.Client().Collection(tsClient.Collection()).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}

	adapter := search.NewTypesenseAdapter(tsClient)
	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	mechanics, err := database.NewMechanicAdapter(pgClient, nil).List(ctx, repositories.MechanicFilter{})
	if err != nil {
		return err
	}

	log.Info().Int("count", len(mechanics)).Msg("indexing mechanics")

	indexed := 0
	for _, m := range mechanics {
		if m == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := adapter.Index(ctx, m); err != nil {
			log.Warn().Err(err).Str("mechanic_id", m.ID).Msg("failed to index mechanic")
			continue
		}
		indexed++
	}

	log.Info().Int("indexed", indexed).Int("total", len(mechanics)).Msg("indexing finished")
	return nil
}
