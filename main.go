package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"hermannm.dev/budget-analytics/api"
	"hermannm.dev/budget-analytics/config"
	"hermannm.dev/budget-analytics/db"
	"hermannm.dev/budget-analytics/db/clickhouse"
	"hermannm.dev/budget-analytics/db/postgres"
	"hermannm.dev/devlog"
	"hermannm.dev/devlog/log"
)

func main() {
	logHandler := devlog.NewHandler(os.Stdout, &devlog.Options{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(logHandler))

	log.Info("loading config...")
	conf, err := config.ReadFromEnv()
	if err != nil {
		log.ErrorCause(err, "failed to read config from env")
		os.Exit(1)
	}

	if conf.IsProduction {
		logHandler = devlog.NewHandler(os.Stdout, &devlog.Options{Level: slog.LevelInfo})
		slog.SetDefault(slog.New(logHandler))
	}

	log.Infof("connecting to %s...", conf.DB)
	analyticsDB, err := connectToDB(context.Background(), conf)
	if err != nil {
		log.ErrorCause(err, "failed to initialize database")
		os.Exit(1)
	}

	analyticsAPI := api.NewAnalyticsAPI(analyticsDB, conf.API)

	log.Infof("listening on port %s...", conf.API.Port)
	if err := analyticsAPI.ListenAndServe(); err != nil {
		log.ErrorCause(err, "server stopped")
		os.Exit(1)
	}
}

func connectToDB(ctx context.Context, conf config.Config) (db.AnalyticsDB, error) {
	switch conf.DB {
	case config.DBClickHouse:
		clickhouseDB, err := clickhouse.NewClickHouseDB(ctx, conf.ClickHouse)
		if err != nil {
			return nil, err
		}
		return clickhouseDB, nil
	case config.DBPostgres:
		postgresDB, err := postgres.NewPostgresDB(ctx, conf.Postgres)
		if err != nil {
			return nil, err
		}
		return postgresDB, nil
	default:
		return nil, fmt.Errorf("unsupported database '%s'", conf.DB)
	}
}
