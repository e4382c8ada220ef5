package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"datafarm/internal/models"
	"datafarm/internal/repositories"
)

// ProduceLogService handles business logic for harvest records.
type ProduceLogService struct {
	logs   repositories.ProduceLogRepository
	events EventPublisher
}

// NewProduceLogService creates a new ProduceLogService.
func NewProduceLogService(logs repositories.ProduceLogRepository, events EventPublisher) *ProduceLogService {
	return &ProduceLogService{logs: logs, events: events}
}

// List returns all records for a user, newest production date first.
func (s *ProduceLogService) List(userID uint) ([]models.ProduceLog, error) {
	return s.logs.ListByUser(userID)
}

// Add records a harvest. productionDate is expected as "2006-01-02".
func (s *ProduceLogService) Add(userID uint, cropName string, quantity float64, productionDate string) (*models.ProduceLog, error) {
	date, err := time.Parse("2006-01-02", productionDate)
	if err != nil {
		return nil, fmt.Errorf("invalid production date %q: %w", productionDate, err)
	}

	entry := &models.ProduceLog{
		UserID:         userID,
		CropName:       cropName,
		Quantity:       quantity,
		ProductionDate: date,
	}
	if err := s.logs.Create(entry); err != nil {
		return nil, err
	}

	if s.events != nil {
		body, err := json.Marshal(map[string]interface{}{
			"logID":    entry.ID,
			"userID":   userID,
			"cropName": cropName,
			"quantity": quantity,
		})
		if err != nil {
			log.Printf("Failed to marshal produce.logged event: %v", err)
		} else if err := s.events.Publish("produce.logged", body); err != nil {
			log.Printf("Warning: failed to publish produce.logged for log %d: %v", entry.ID, err)
		}
	}

	return entry, nil
}

// Delete removes a record by id.
func (s *ProduceLogService) Delete(logID uint) error {
	deleted, err := s.logs.Delete(logID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrLogNotFound
	}
	return nil
}
