// Command migrate applies the database schema without starting the
// server, for deploy pipelines that migrate before rollout.
package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/infrastructure/config"
	"github.com/webconf/checkout/internal/infrastructure/logger"
	"github.com/webconf/checkout/internal/infrastructure/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.NewForEnvironment(cfg.App.Env)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Migrate(); err != nil {
		log.Error("Migration failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Migration complete", zap.String("database", cfg.Database.DBName))
}
