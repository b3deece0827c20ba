package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/agentbill/backend/internal/infrastructure/config"
	"github.com/agentbill/backend/internal/infrastructure/logger"
	"github.com/agentbill/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// Schema CLI: applies the gorm schema for the billing tables without
// starting the server. Useful in CI and for one-off environments where
// the server's startup migration is not wanted.
func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	switch command {
	case "up":
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Schema migrated successfully")
	case "status":
		for _, table := range []string{"billing_models", "outcome_metrics", "outcome_verification_rules", "cost_entries"} {
			exists := db.DB.Migrator().HasTable(table)
			log.Info("Table status", zap.String("table", table), zap.Bool("exists", exists))
		}
	case "ping":
		if err := db.Ping(); err != nil {
			log.Fatal("Database unreachable", zap.Error(err))
		}
		log.Info("Database reachable")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\nUsage: migrate [-log-level level] [up|status|ping]\n", command)
		os.Exit(1)
	}
}
