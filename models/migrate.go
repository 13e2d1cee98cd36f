package models

import (
	"fmt"

	"gorm.io/gorm"
)

// historyColumns were added after the table first shipped; older databases may
// be missing them.
var historyColumns = []string{"temperature", "humidity", "recorded_at"}

// EnsureHistoryColumns adds any missing reading columns to an existing
// weather_history table. Idempotent, safe to run on every startup. A database
// without the table at all is left alone: table creation belongs to
// AutoMigrate, which runs afterwards.
func EnsureHistoryColumns(db *gorm.DB) error {
	migrator := db.Migrator()
	if !migrator.HasTable(&WeatherHistory{}) {
		return nil
	}

	for _, column := range historyColumns {
		if migrator.HasColumn(&WeatherHistory{}, column) {
			continue
		}
		if err := migrator.AddColumn(&WeatherHistory{}, column); err != nil {
			return fmt.Errorf("add column %s: %w", column, err)
		}
	}
	return nil
}
