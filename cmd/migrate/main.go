package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/analytics/schema"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/analytics/schema/migrations"
	"github.com/ctsc/southeast-tech-internships-2026-2027/internal/config"
)

func main() {
	down := flag.Bool("down", false, "roll back the newest applied migration instead of applying pending ones")
	flag.Parse()
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadDefault()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Infra.ClickHouseDSN},
		Auth: clickhouse.Auth{
			Database: cfg.Infra.ClickHouseDatabase,
			Username: cfg.Infra.ClickHouseUsername,
			Password: cfg.Infra.ClickHousePassword,
		},
	})
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer conn.Close()

	ctx := context.Background()

	migrator := schema.NewMigrator(conn, logger)

	if err := migrator.CreateMigrationsTable(ctx); err != nil {
		logger.Fatal("Failed to create migrations table", zap.Error(err))
	}

	applied, err := migrator.GetAppliedMigrations(ctx)
	if err != nil {
		logger.Fatal("Failed to get applied migrations", zap.Error(err))
	}

	if *down {
		rollbackNewest(ctx, migrator, applied, logger)
		return
	}

	for _, migration := range migrations.All() {
		if _, ok := applied[migration.Version]; ok {
			logger.Info("Migration already applied",
				zap.Int("version", migration.Version),
				zap.String("description", migration.Description),
			)
			continue
		}

		logger.Info("Applying migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description),
		)

		if err := migrator.ApplyMigration(ctx, migration); err != nil {
			logger.Fatal("Failed to apply migration",
				zap.Int("version", migration.Version),
				zap.Error(err),
			)
		}

		logger.Info("Successfully applied migration",
			zap.Int("version", migration.Version),
		)
	}

	logger.Info("All migrations completed successfully")
}

func rollbackNewest(ctx context.Context, migrator *schema.Migrator, applied map[int]time.Time, logger *zap.Logger) {
	var newest *schema.Migration
	for _, migration := range migrations.All() {
		if _, ok := applied[migration.Version]; !ok {
			continue
		}
		if newest == nil || migration.Version > newest.Version {
			m := migration
			newest = &m
		}
	}

	if newest == nil {
		logger.Info("No applied migrations to roll back")
		return
	}

	logger.Info("Rolling back migration",
		zap.Int("version", newest.Version),
		zap.String("description", newest.Description),
	)

	if err := migrator.RollbackMigration(ctx, *newest); err != nil {
		logger.Fatal("Failed to roll back migration",
			zap.Int("version", newest.Version),
			zap.Error(err),
		)
	}

	logger.Info("Successfully rolled back migration",
		zap.Int("version", newest.Version),
	)
}
