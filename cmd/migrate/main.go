package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ruralgeo/ruralgeo/internal/app/config"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database/models"
	"github.com/ruralgeo/ruralgeo/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	command := os.Args[1]

	logger := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		runMigrations(db, logger)
	case "reset":
		resetDatabase(db, logger)
	case "status":
		migrationStatus(db, logger)
	default:
		logger.Error().Str("command", command).Msg("Unknown command")
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage: go run cmd/migrate/main.go <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  up     - Run all pending migrations")
	fmt.Println("  reset  - Drop and recreate all tables")
	fmt.Println("  status - Show which tables exist")
}

func runMigrations(db *database.DB, logger *logger.Logger) {
	logger.Info().Msg("Running migrations...")

	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		logger.Error().Err(err).Msg("Migration failed")
		os.Exit(1)
	}

	logger.Info().Msg("Migrations completed successfully")
}

func resetDatabase(db *database.DB, logger *logger.Logger) {
	logger.Warn().Msg("Resetting database: all data will be lost")

	migrator := db.DB.Migrator()
	for _, model := range models.GetAllModels() {
		if migrator.HasTable(model) {
			if err := migrator.DropTable(model); err != nil {
				logger.Error().Err(err).Msg("Failed to drop table")
				os.Exit(1)
			}
		}
	}

	runMigrations(db, logger)
}

func migrationStatus(db *database.DB, logger *logger.Logger) {
	migrator := db.DB.Migrator()
	for _, model := range models.GetAllModels() {
		exists := migrator.HasTable(model)
		logger.Info().
			Str("model", fmt.Sprintf("%T", model)).
			Bool("table_exists", exists).
			Msg("migration status")
	}
}
