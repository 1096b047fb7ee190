package testutil

import (
	"testing"

	"chatwarden/internal/botconfig"
	"chatwarden/internal/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing.
// It returns a cleanup function that should be called after the test.
func SetupTestDB(t *testing.T) func() {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Auto migrate all models
	err = db.AutoMigrate(
		&database.SecurityEvent{},
		&database.Message{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	// Set global DB
	database.DB = db

	return func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		database.DB = nil
	}
}

// TestConfig returns a moderation configuration with spec defaults
func TestConfig() botconfig.Config {
	cfg := botconfig.Default()
	cfg.Moderation = botconfig.ModerationConfig{
		SuspiciousThreshold: 3,
		SpamThreshold:       5,
		SpamWindowSeconds:   10,
		BlockedWords:        botconfig.DefaultBlockedWords(),
		AutoModeration:      true,
		ReasonHistoryLimit:  100,
		EscalationPolicy:    "every",
	}
	return cfg
}
