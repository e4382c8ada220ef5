package repositories

import (
	"errors"
	"fmt"
	"time"

	"datafarm/internal/models"
	"datafarm/internal/schema"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository. Table names
// and the primary-key column come from the injected schema binding; only
// values are ever parameterized into queries.
type GORMUserRepository struct {
	db      *gorm.DB
	binding schema.Binding
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB, binding schema.Binding) *GORMUserRepository {
	return &GORMUserRepository{
		db:      db,
		binding: binding,
	}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *GORMUserRepository) WithTx(tx *gorm.DB) UserRepository {
	return &GORMUserRepository{db: tx, binding: r.binding}
}

// FindByEmail retrieves a user by case-insensitive email match. Returns
// (nil, nil) when no row exists.
func (r *GORMUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	cols := fmt.Sprintf(
		"%s AS id, email, is_verified, verified_at, username, phone_number, password_hash, profile_image_ref, location_id",
		r.binding.UsersPK,
	)
	err := r.db.Table(r.binding.Users).
		Select(cols).
		Where("LOWER(email) = LOWER(?)", email).
		Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// CreatePlaceholder inserts an unverified row holding only the email, and
// returns it with the store-assigned id populated.
func (r *GORMUserRepository) CreatePlaceholder(email string) (*models.User, error) {
	user := models.User{Email: email, IsVerified: 0}
	if err := r.db.Table(r.binding.Users).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create placeholder user: %w", err)
	}
	return &user, nil
}

// MarkVerified flips the user to verified and records the timestamp.
func (r *GORMUserRepository) MarkVerified(userID uint, at time.Time) error {
	err := r.db.Table(r.binding.Users).
		Where(fmt.Sprintf("%s = ?", r.binding.UsersPK), userID).
		Updates(map[string]interface{}{
			"is_verified": 1,
			"verified_at": at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

// SaveProfile writes the profile-completion fields onto the user row.
func (r *GORMUserRepository) SaveProfile(userID uint, update ProfileUpdate) error {
	err := r.db.Table(r.binding.Users).
		Where(fmt.Sprintf("%s = ?", r.binding.UsersPK), userID).
		Updates(map[string]interface{}{
			"username":          update.Username,
			"phone_number":      update.PhoneNumber,
			"password_hash":     update.PasswordHash,
			"profile_image_ref": update.ProfileImageRef,
			"location_id":       update.LocationID,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}
	return nil
}
