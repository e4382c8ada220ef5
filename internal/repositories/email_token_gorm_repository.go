package repositories

import (
	"fmt"
	"time"

	"datafarm/internal/models"
	"datafarm/internal/schema"

	"gorm.io/gorm"
)

// GORMEmailTokenRepository is a GORM implementation of EmailTokenRepository.
type GORMEmailTokenRepository struct {
	db      *gorm.DB
	binding schema.Binding
}

// NewGORMEmailTokenRepository creates a new instance of GORMEmailTokenRepository.
func NewGORMEmailTokenRepository(db *gorm.DB, binding schema.Binding) *GORMEmailTokenRepository {
	return &GORMEmailTokenRepository{
		db:      db,
		binding: binding,
	}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *GORMEmailTokenRepository) WithTx(tx *gorm.DB) EmailTokenRepository {
	return &GORMEmailTokenRepository{db: tx, binding: r.binding}
}

// InvalidateUnused stamps used_at on every unused token of the purpose for
// the user. Rows are kept, not deleted.
func (r *GORMEmailTokenRepository) InvalidateUnused(userID uint, purpose string, at time.Time) error {
	err := r.db.Table(r.binding.EmailTokens).
		Where("user_id = ? AND purpose = ? AND used_at IS NULL", userID, purpose).
		Update("used_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate unused tokens: %w", err)
	}
	return nil
}

// Create inserts a freshly issued token.
func (r *GORMEmailTokenRepository) Create(token *models.EmailToken) error {
	if err := r.db.Table(r.binding.EmailTokens).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create email token: %w", err)
	}
	return nil
}

// Consume marks the matching valid token used in a single statement, so a
// token can never be redeemed twice. The code is compared exactly, with no
// case folding or trimming.
func (r *GORMEmailTokenRepository) Consume(userID uint, purpose, code string, at time.Time) (bool, error) {
	res := r.db.Table(r.binding.EmailTokens).
		Where("user_id = ? AND purpose = ? AND used_at IS NULL AND expires_at > ? AND token = ?",
			userID, purpose, at, code).
		Update("used_at", at)
	if res.Error != nil {
		return false, fmt.Errorf("failed to consume token: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
