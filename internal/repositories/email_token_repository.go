package repositories

import (
	"time"

	"datafarm/internal/models"

	"gorm.io/gorm"
)

// EmailTokenRepository defines the interface for one-time-code persistence.
type EmailTokenRepository interface {
	WithTx(tx *gorm.DB) EmailTokenRepository
	// InvalidateUnused soft-invalidates every unused token of the given
	// purpose for the user by stamping used_at.
	InvalidateUnused(userID uint, purpose string, at time.Time) error
	Create(token *models.EmailToken) error
	// Consume marks the matching unused, unexpired token as used. It reports
	// false when no such token exists, which covers wrong codes, expired
	// codes, superseded codes, and replayed codes alike.
	Consume(userID uint, purpose, code string, at time.Time) (bool, error)
}
