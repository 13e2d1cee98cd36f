package services

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"weather-app-api/models"
)

const (
	MinFetchLimit = 1
	MaxFetchLimit = 50000
)

// HistoryFilter narrows a history read. Zero values mean "no restriction on
// that dimension". Date ordering (start <= end) is the caller's concern; the
// query does not re-validate it.
type HistoryFilter struct {
	LocationName string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Skip         int
}

// HistoryUpdate carries a partial update. A nil field means "not supplied"
// and leaves the stored value untouched.
type HistoryUpdate struct {
	LocationName *string
	Latitude     *float64
	Longitude    *float64
	StartDate    *time.Time
	EndDate      *time.Time
	Temperature  *float64
	Humidity     *float64
	RecordedAt   *time.Time
	WeatherData  datatypes.JSON
}

// HistoryService owns reads and writes of persisted weather readings.
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

func (s *HistoryService) Create(record *models.WeatherHistory) error {
	return s.db.Create(record).Error
}

func (s *HistoryService) GetByID(id uint) (*models.WeatherHistory, error) {
	var record models.WeatherHistory
	if err := s.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Fetch returns matching readings ordered by descending id (most recent
// insert first). The location filter is a case-insensitive substring match;
// date bounds apply to the stored range and pass rows that have none.
func (s *HistoryService) Fetch(filter HistoryFilter) ([]models.WeatherHistory, error) {
	limit := filter.Limit
	if limit < MinFetchLimit {
		limit = MinFetchLimit
	}
	if limit > MaxFetchLimit {
		limit = MaxFetchLimit
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}

	query := s.db.Model(&models.WeatherHistory{})
	if filter.LocationName != "" {
		query = query.Where("LOWER(location_name) LIKE ?", "%"+strings.ToLower(filter.LocationName)+"%")
	}
	if filter.StartDate != nil {
		query = query.Where("(start_date IS NULL OR start_date >= ?)", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("(end_date IS NULL OR end_date <= ?)", *filter.EndDate)
	}

	var rows []models.WeatherHistory
	err := query.Order("id DESC").Offset(skip).Limit(limit).Find(&rows).Error
	return rows, err
}

// Update applies the supplied fields only; it reports gorm.ErrRecordNotFound
// for a missing record. updated_at is set if and only if something changes.
func (s *HistoryService) Update(id uint, update HistoryUpdate) (*models.WeatherHistory, error) {
	record, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.LocationName != nil {
		changes["location_name"] = *update.LocationName
	}
	if update.Latitude != nil {
		changes["latitude"] = *update.Latitude
	}
	if update.Longitude != nil {
		changes["longitude"] = *update.Longitude
	}
	if update.StartDate != nil {
		changes["start_date"] = *update.StartDate
	}
	if update.EndDate != nil {
		changes["end_date"] = *update.EndDate
	}
	if update.Temperature != nil {
		changes["temperature"] = *update.Temperature
	}
	if update.Humidity != nil {
		changes["humidity"] = *update.Humidity
	}
	if update.RecordedAt != nil {
		changes["recorded_at"] = *update.RecordedAt
	}
	if update.WeatherData != nil {
		changes["weather_data"] = update.WeatherData
	}
	if len(changes) == 0 {
		return record, nil
	}
	changes["updated_at"] = time.Now().UTC()

	if err := s.db.Model(record).Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Delete removes a record and returns it, or gorm.ErrRecordNotFound.
func (s *HistoryService) Delete(id uint) (*models.WeatherHistory, error) {
	record, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.db.Delete(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}
