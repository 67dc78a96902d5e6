package main

import (
	"context"
	"flag"
	"os"
	"time"

	mongoMigration "printhub/internal/migrations/mongo"
	"printhub/pkg/config"
)

const JobName = "printhub-migrate"

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "overall migration deadline")
	flag.Parse()

	cfg := config.Load(JobName)
	cfg.SetMongo()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.Log)
	cancel()
	cfg.GracefulShutdown()

	if err != nil {
		cfg.Log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	cfg.Log.Info("Migration completed", "database", cfg.MongoDatabaseName)
}
