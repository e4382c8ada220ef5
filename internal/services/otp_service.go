package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	"datafarm/internal/models"
	"datafarm/internal/repositories"

	"gorm.io/gorm"
)

// OTPTTL is the redemption window for a signup code.
const OTPTTL = 3 * time.Minute

// LinkTokenTTL is the redemption window for link-based verification tokens.
const LinkTokenTTL = 24 * time.Hour

var otpRange = big.NewInt(1_000_000)

// OTPService issues and verifies one-time codes bound to a user. At most one
// unused, unexpired code per (user, purpose) is valid at a time: issuing a new
// code soft-invalidates all prior unused codes of that purpose. Both Issue and
// Verify run against the transaction handle supplied by the caller, so the
// dependent user-state change commits atomically with the token change.
type OTPService struct {
	tokens repositories.EmailTokenRepository
}

// NewOTPService creates a new OTPService.
func NewOTPService(tokens repositories.EmailTokenRepository) *OTPService {
	return &OTPService{tokens: tokens}
}

// Issue invalidates the user's outstanding codes and persists a fresh 6-digit
// code expiring after ttl. The caller owns the enclosing transaction.
func (s *OTPService) Issue(tx *gorm.DB, userID uint, ttl time.Duration) (string, error) {
	tokens := s.tokens.WithTx(tx)
	now := time.Now()

	if err := tokens.InvalidateUnused(userID, models.PurposeOTP, now); err != nil {
		return "", err
	}

	code, err := generateOTP()
	if err != nil {
		return "", err
	}

	err = tokens.Create(&models.EmailToken{
		UserID:    userID,
		Token:     code,
		Purpose:   models.PurposeOTP,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// IssueLink issues a url-safe token for link-based verification flows, with
// the same supersession rule under its own purpose tag.
func (s *OTPService) IssueLink(tx *gorm.DB, userID uint, ttl time.Duration) (string, error) {
	tokens := s.tokens.WithTx(tx)
	now := time.Now()

	if err := tokens.InvalidateUnused(userID, models.PurposeVerify, now); err != nil {
		return "", err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate link token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	err := tokens.Create(&models.EmailToken{
		UserID:    userID,
		Token:     token,
		Purpose:   models.PurposeVerify,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Verify redeems the code if it is unused, unexpired, and matches exactly.
// A successful verification marks the row used within the caller's
// transaction; codes are single-use.
func (s *OTPService) Verify(tx *gorm.DB, userID uint, code string) (bool, error) {
	return s.tokens.WithTx(tx).Consume(userID, models.PurposeOTP, code, time.Now())
}

// generateOTP draws a uniform 6-digit code from crypto/rand; zero-padding
// keeps leading zeros, and sampling below 10^6 avoids modulus bias.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
