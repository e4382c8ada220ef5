package models

import "time"

// Token purposes. An OTP is the short-lived 6-digit signup code; a verify
// token is the longer-lived url-safe variant used for link-based flows.
const (
	PurposeOTP    = "OTP"
	PurposeVerify = "VERIFY"
)

// EmailToken is a single issued verification code or link token. Rows are
// never deleted: superseded and redeemed tokens are soft-invalidated by
// setting UsedAt, preserving audit history.
type EmailToken struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"index;not null"`
	Token     string     `json:"-" gorm:"type:varchar(64);not null"`
	Purpose   string     `json:"purpose" gorm:"type:varchar(16);not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	UsedAt    *time.Time `json:"used_at"`
}
