package repositories

import (
	"fmt"

	"datafarm/internal/models"
	"datafarm/internal/schema"

	"gorm.io/gorm"
)

// ProduceLogRepository defines the interface for harvest record access.
type ProduceLogRepository interface {
	ListByUser(userID uint) ([]models.ProduceLog, error)
	Create(log *models.ProduceLog) error
	// Delete removes the row and reports whether anything was deleted.
	Delete(logID uint) (bool, error)
}

// GORMProduceLogRepository is a GORM implementation of ProduceLogRepository.
type GORMProduceLogRepository struct {
	db      *gorm.DB
	binding schema.Binding
}

// NewGORMProduceLogRepository creates a new instance of GORMProduceLogRepository.
func NewGORMProduceLogRepository(db *gorm.DB, binding schema.Binding) *GORMProduceLogRepository {
	return &GORMProduceLogRepository{
		db:      db,
		binding: binding,
	}
}

// ListByUser returns all records for a user, newest production date first.
func (r *GORMProduceLogRepository) ListByUser(userID uint) ([]models.ProduceLog, error) {
	var logs []models.ProduceLog
	err := r.db.Table(r.binding.ProduceLogs).
		Where("user_id = ?", userID).
		Order("production_date DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list produce logs: %w", err)
	}
	return logs, nil
}

// Create inserts a new harvest record.
func (r *GORMProduceLogRepository) Create(log *models.ProduceLog) error {
	if err := r.db.Table(r.binding.ProduceLogs).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create produce log: %w", err)
	}
	return nil
}

// Delete removes a record by id.
func (r *GORMProduceLogRepository) Delete(logID uint) (bool, error) {
	res := r.db.Table(r.binding.ProduceLogs).
		Where("id = ?", logID).
		Delete(&models.ProduceLog{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete produce log: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
