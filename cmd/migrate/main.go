package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/config"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/db"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/logger"
	"github.com/henriquelv/rottava-agro-pet-sub003/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	ctx := context.Background()

	dir := flag.String("dir", migrate.DefaultDir, "migrations directory")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		logg.Info(ctx, "usage: migrate [-dir path] <up|down|status|version|up-to VERSION|down-to VERSION>")
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		logg.Error(ctx, "failed to access sql connection", err)
		os.Exit(1)
	}

	command := args[0]
	switch command {
	case "up-to", "down-to":
		if len(args) < 2 {
			logg.Info(ctx, "usage: migrate "+command+" VERSION")
			os.Exit(2)
		}
		err = migrate.ToVersion(ctx, sqlDB, *dir, args[1])
	default:
		err = migrate.Run(ctx, sqlDB, *dir, command, args[1:]...)
	}
	if err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "command", command), "migration complete")
}
