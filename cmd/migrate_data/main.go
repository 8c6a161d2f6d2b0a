package main

import (
	"github.com/htech-wordpress/vibefit-studio-admin/internal/config"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/database"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 200

// Copies every table from the SQLite file at DB_PATH into the PostgreSQL database from
// DB_HOST/DB_NAME. Rows that already exist in PostgreSQL are left alone, so it can be re-run.
func main() {
	cfg := config.LoadConfig()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// 1. Connect to SQLite (Source)
	sqliteDB, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to SQLite")
	}
	logging.Info().Str("path", cfg.DBPath).Msg("Connected to SQLite")

	// 2. Connect to PostgreSQL (Destination)
	cfg.DBDriver = "postgres"
	pgDB, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}

	logging.Info().Msg("Starting data migration...")

	migrateTable := func(tableName string, source interface{}) {
		logging.Info().Str("table", tableName).Msg("Migrating table")

		if err := sqliteDB.Find(source).Error; err != nil {
			logging.Error().Err(err).Str("table", tableName).Msg("Error reading from SQLite")
			return
		}

		err := pgDB.Transaction(func(tx *gorm.DB) error {
			return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(source, batchSize).Error
		})
		if err != nil {
			logging.Error().Err(err).Str("table", tableName).Msg("Error writing to PostgreSQL")
			return
		}
		logging.Info().Str("table", tableName).Msg("Successfully migrated")
	}

	// Users before sessions; documents are independent.
	var users []models.User
	migrateTable("users", &users)

	var sessions []models.Session
	migrateTable("sessions", &sessions)

	var documents []models.Document
	migrateTable("documents", &documents)

	logging.Info().Msg("Migration completed!")
}
