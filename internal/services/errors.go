package services

import "errors"

// Caller-distinguishable outcomes. Store errors are wrapped separately and
// never exposed to handlers' response bodies.
var (
	ErrAlreadyVerified    = errors.New("account is already verified")
	ErrUnknownEmail       = errors.New("no account exists for this email")
	ErrInvalidCode        = errors.New("code is invalid or expired")
	ErrNotVerified        = errors.New("email verification has not been completed")
	ErrAlreadyRegistered  = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDeliveryFailed is returned after the code has been durably committed;
	// the code stays valid even though the mail bounced.
	ErrDeliveryFailed = errors.New("failed to deliver verification mail")

	ErrUnknownRegion      = errors.New("unknown region")
	ErrWeatherUnavailable = errors.New("weather data is unavailable")
	ErrLogNotFound        = errors.New("produce log not found")
)
