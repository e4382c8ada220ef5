package repositories

import (
	"time"

	"datafarm/internal/models"

	"gorm.io/gorm"
)

// ProfileUpdate carries the fields written by profile completion.
type ProfileUpdate struct {
	Username        string
	PhoneNumber     string
	PasswordHash    string
	ProfileImageRef *string
	LocationID      uint
}

// UserRepository defines the interface for user data access. Lookups that
// find nothing return (nil, nil) so callers can branch on state without
// string-matching errors.
type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	FindByEmail(email string) (*models.User, error)
	CreatePlaceholder(email string) (*models.User, error)
	MarkVerified(userID uint, at time.Time) error
	SaveProfile(userID uint, update ProfileUpdate) error
}
