package models

import (
	"time"

	"gorm.io/datatypes"
)

// WeatherHistory is one persisted weather reading. Optional fields are pointers
// so a missing value round-trips as NULL rather than a zero value.
type WeatherHistory struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	LocationName *string        `gorm:"column:location_name" json:"location_name"`
	Latitude     *float64       `gorm:"column:latitude" json:"latitude"`
	Longitude    *float64       `gorm:"column:longitude" json:"longitude"`
	StartDate    *time.Time     `gorm:"column:start_date;type:date" json:"start_date"`
	EndDate      *time.Time     `gorm:"column:end_date;type:date" json:"end_date"`
	Temperature  *float64       `gorm:"column:temperature" json:"temperature"`
	Humidity     *float64       `gorm:"column:humidity" json:"humidity"`
	RecordedAt   *time.Time     `gorm:"column:recorded_at" json:"recorded_at"`
	WeatherData  datatypes.JSON `gorm:"column:weather_data" json:"weather_data,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	// UpdatedAt stays NULL until the first update; set explicitly, not via
	// gorm's autoUpdateTime, so creation does not populate it.
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (WeatherHistory) TableName() string { return "weather_history" }
