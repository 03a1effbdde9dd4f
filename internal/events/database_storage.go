package events

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sutaaa0/cashier-app-sub001/internal/models"
)

// DatabaseEventStorage stores events in PostgreSQL
type DatabaseEventStorage struct {
	db *gorm.DB
}

// NewDatabaseEventStorage creates a new database event storage
func NewDatabaseEventStorage(db *gorm.DB) *DatabaseEventStorage {
	return &DatabaseEventStorage{db: db}
}

// Store saves an event to the database
func (s *DatabaseEventStorage) Store(event Event) error {
	dataJSON, err := json.Marshal(event.Data)
	if err != nil {
		return err
	}

	operationEvent := &models.OperationEvent{
		EventID:   event.ID,
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Source:    event.Source,
		Success:   event.Success,
		Details:   datatypes.JSON(dataJSON),
	}

	return s.db.Create(operationEvent).Error
}

// Query retrieves events based on filters
func (s *DatabaseEventStorage) Query(filters EventFilters) ([]Event, error) {
	query := s.db.Model(&models.OperationEvent{})

	if len(filters.Types) > 0 {
		types := make([]string, len(filters.Types))
		for i, t := range filters.Types {
			types[i] = string(t)
		}
		query = query.Where("type IN ?", types)
	}

	if filters.Source != "" {
		query = query.Where("source = ?", filters.Source)
	}

	if !filters.StartTime.IsZero() {
		query = query.Where("timestamp >= ?", filters.StartTime)
	}

	if !filters.EndTime.IsZero() {
		query = query.Where("timestamp <= ?", filters.EndTime)
	}

	query = query.Order("timestamp DESC")

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	} else {
		query = query.Limit(1000) // Default limit
	}

	var operationEvents []models.OperationEvent
	if err := query.Find(&operationEvents).Error; err != nil {
		return nil, err
	}

	events := make([]Event, len(operationEvents))
	for i, oe := range operationEvents {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(oe.Details), &data); err != nil {
			data = make(map[string]interface{})
		}

		events[i] = Event{
			ID:        oe.EventID,
			Type:      EventType(oe.Type),
			Timestamp: oe.Timestamp,
			Source:    oe.Source,
			Success:   oe.Success,
			Data:      data,
		}
	}

	return events, nil
}
