package repositories

import (
	"fmt"

	"datafarm/internal/models"
	"datafarm/internal/schema"

	"gorm.io/gorm"
)

// LocationRepository defines the interface for address row persistence.
type LocationRepository interface {
	WithTx(tx *gorm.DB) LocationRepository
	Create(loc *models.Location) error
}

// GORMLocationRepository is a GORM implementation of LocationRepository.
type GORMLocationRepository struct {
	db      *gorm.DB
	binding schema.Binding
}

// NewGORMLocationRepository creates a new instance of GORMLocationRepository.
func NewGORMLocationRepository(db *gorm.DB, binding schema.Binding) *GORMLocationRepository {
	return &GORMLocationRepository{
		db:      db,
		binding: binding,
	}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *GORMLocationRepository) WithTx(tx *gorm.DB) LocationRepository {
	return &GORMLocationRepository{db: tx, binding: r.binding}
}

// Create inserts a location row and populates its generated id.
func (r *GORMLocationRepository) Create(loc *models.Location) error {
	if err := r.db.Table(r.binding.Locations).Create(loc).Error; err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}
