package models

import "time"

// User represents a marketplace account. A row starts life as a placeholder
// (email only, unverified) when a verification code is first requested, and is
// filled in by OTP confirmation and profile completion.
type User struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Email           string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	IsVerified      int        `json:"is_verified" gorm:"default:0"`
	VerifiedAt      *time.Time `json:"verified_at"`
	Username        *string    `json:"username" gorm:"type:varchar(100)"`
	PhoneNumber     *string    `json:"phone_number" gorm:"type:varchar(30)"`
	PasswordHash    *string    `gorm:"column:password_hash;type:varchar(255)"` // No json tag for security
	ProfileImageRef *string    `json:"profile_image_ref" gorm:"type:varchar(255)"`
	LocationID      *uint      `json:"location_id"`
}

// HasProfile reports whether profile completion has already populated the row.
func (u *User) HasProfile() bool {
	return u.Username != nil && u.PasswordHash != nil
}
