package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/liamcoop/salarypredict/dataset"
	"github.com/liamcoop/salarypredict/internal/logger"
)

func main() {
	var databaseURL string
	var driver string
	var command string
	var csvPath string
	var version int
	var logLevel string

	flag.StringVar(&databaseURL, "database", "", "Database URL or SQLite file (required)")
	flag.StringVar(&driver, "driver", dataset.DriverPostgres, "Database driver: postgres, sqlite")
	flag.StringVar(&command, "command", "up", "Migration command: up, down, version, force, import")
	flag.StringVar(&csvPath, "csv", "processed/cleaned_data.csv", "Cleaned dataset to load with -command import")
	flag.IntVar(&version, "version", -1, "Schema version for -command force")
	flag.StringVar(&logLevel, "log-level", "INFO", "Log level")
	flag.Parse()

	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger.SetLevel(level)

	// Check for database URL from flag or environment
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		logger.Fatal("database URL is required; use -database or DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("connecting to database", "driver", driver)
	store, err := dataset.OpenSQLStore(ctx, driver, databaseURL)
	if err != nil {
		logger.Fatal("failed to connect", "driver", driver, "error", err)
	}
	defer store.Close()

	db := store.DB().DB

	switch command {
	case "up":
		logger.Info("running migrations up")
		if err := dataset.Migrate(db, driver); err != nil {
			logger.Fatal("failed to run migrations", "error", err)
		}
		logger.Info("migrations completed")

	case "down":
		logger.Info("rolling back migrations")
		if err := dataset.MigrateDown(db, driver); err != nil {
			logger.Fatal("failed to roll back migrations", "error", err)
		}
		logger.Info("rollback completed")

	case "version":
		v, dirty, err := dataset.Version(db, driver)
		if err != nil {
			logger.Fatal("failed to get version", "error", err)
		}
		logger.Info("current version", "version", v, "dirty", dirty)

	case "force":
		if version < 0 {
			logger.Fatal("force requires a version: -command force -version <n>")
		}
		if err := dataset.Force(db, driver, version); err != nil {
			logger.Fatal("failed to force version", "version", version, "error", err)
		}
		logger.Info("forced version", "version", version)

	case "import":
		if err := dataset.Migrate(db, driver); err != nil {
			logger.Fatal("failed to run migrations", "error", err)
		}
		table, err := dataset.LoadCSVFile(csvPath)
		if err != nil {
			logger.Fatal("failed to read dataset", "path", csvPath, "error", err)
		}
		if err := store.Import(ctx, table); err != nil {
			logger.Fatal("failed to import dataset", "error", err)
		}
		logger.Info("dataset imported", "path", csvPath, "observations", table.Len(), "columns", table.Schema().Len())

	default:
		logger.Fatal("unknown command (use: up, down, version, force, import)", "command", command)
	}
}
