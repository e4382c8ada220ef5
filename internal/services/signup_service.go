package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"datafarm/internal/mailer"
	"datafarm/internal/models"
	"datafarm/internal/repositories"
	"datafarm/internal/storage"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProfileInput carries the sign-up form fields.
type ProfileInput struct {
	Username      string
	Email         string
	PhoneNumber   string
	Password      string
	SiDo          string
	SiGunGu       string
	Dong          string
	DetailAddress string

	// Optional profile image payload.
	ImageName  string
	ImageBytes []byte
}

// SignupService drives the email-verification-gated registration flow:
// unknown email -> pending verification -> verified, incomplete profile ->
// fully registered. Each operation runs its store writes inside one
// transaction; mail delivery and event publication happen strictly after
// commit and never roll state back.
type SignupService struct {
	db        *gorm.DB
	users     repositories.UserRepository
	locations repositories.LocationRepository
	otp       *OTPService
	sender    mailer.Sender
	images    *storage.ImageStore
	events    EventPublisher
}

// NewSignupService creates a new SignupService.
func NewSignupService(
	db *gorm.DB,
	users repositories.UserRepository,
	locations repositories.LocationRepository,
	otp *OTPService,
	sender mailer.Sender,
	images *storage.ImageStore,
	events EventPublisher,
) *SignupService {
	return &SignupService{
		db:        db,
		users:     users,
		locations: locations,
		otp:       otp,
		sender:    sender,
		images:    images,
		events:    events,
	}
}

// RequestVerification issues a signup code for the email, creating a
// placeholder user first if none exists. Already-verified accounts get
// ErrAlreadyVerified without a new code. The placeholder insert and the code
// issuance share one transaction; the mail goes out only after commit, and a
// bounced mail surfaces as ErrDeliveryFailed while the committed code stays
// redeemable.
func (s *SignupService) RequestVerification(email string) error {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return err
	}
	if user != nil && user.IsVerified == 1 {
		return ErrAlreadyVerified
	}

	var code string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		u := user
		if u == nil {
			created, err := s.users.WithTx(tx).CreatePlaceholder(email)
			if err != nil {
				return err
			}
			u = created
		}
		issued, err := s.otp.Issue(tx, u.ID, OTPTTL)
		if err != nil {
			return err
		}
		code = issued
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.sender.Send(email, "[DataFarm] Signup verification code", mailer.OTPHTML(code)); err != nil {
		log.Printf("OTP mail delivery failed for %s: %v", email, err)
		return ErrDeliveryFailed
	}
	return nil
}

// ConfirmVerification redeems the code and flips the user to verified in the
// same transaction. Confirming an already-verified account is an idempotent
// success for the caller, reported as ErrAlreadyVerified.
func (s *SignupService) ConfirmVerification(email, code string) error {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUnknownEmail
	}
	if user.IsVerified == 1 {
		return ErrAlreadyVerified
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		ok, err := s.otp.Verify(tx, user.ID, code)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidCode
		}
		return s.users.WithTx(tx).MarkVerified(user.ID, time.Now())
	})
}

// CompleteProfile fills in the profile of a verified account. Guards run in a
// fixed order and each rejection discards the staged image:
//   - unknown email: the applicant must request a code first
//   - not verified: the applicant must confirm the code first; the location
//     row inserted beforehand is deliberately kept (see DESIGN.md)
//   - profile already populated: already registered
//
// The image is staged to disk before any store work so a store failure never
// orphans a referenced upload; it is promoted to its final location inside the
// same transaction that records the reference.
func (s *SignupService) CompleteProfile(in ProfileInput) error {
	staged := ""
	if len(in.ImageBytes) > 0 {
		staged = storage.GenerateName(in.ImageName, storage.ModeDate)
		if err := s.images.Stage(staged, in.ImageBytes); err != nil {
			return err
		}
	}
	discard := func() {
		if staged != "" {
			if err := s.images.Discard(staged); err != nil {
				log.Printf("Failed to discard staged image %s: %v", staged, err)
			}
		}
	}

	user, err := s.users.FindByEmail(in.Email)
	if err != nil {
		discard()
		return err
	}
	if user == nil {
		discard()
		return ErrUnknownEmail
	}

	// The location row is written before the verification guard and survives
	// a not-yet-verified rejection.
	loc := models.Location{
		SiDo:          in.SiDo,
		SiGunGu:       in.SiGunGu,
		Dong:          in.Dong,
		DetailAddress: in.DetailAddress,
	}
	if err := s.locations.Create(&loc); err != nil {
		discard()
		return err
	}

	if user.IsVerified != 1 {
		discard()
		return ErrNotVerified
	}
	if user.HasProfile() {
		discard()
		return ErrAlreadyRegistered
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		discard()
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		update := repositories.ProfileUpdate{
			Username:     in.Username,
			PhoneNumber:  in.PhoneNumber,
			PasswordHash: string(hashed),
			LocationID:   loc.ID,
		}
		if staged != "" {
			update.ProfileImageRef = &staged
		}
		if err := s.users.WithTx(tx).SaveProfile(user.ID, update); err != nil {
			return err
		}
		if staged != "" {
			return s.images.Promote(staged)
		}
		return nil
	})
	if err != nil {
		discard()
		return err
	}

	s.publishRegistered(user.ID, in.Email, in.Username)
	return nil
}

// Login checks the password against the stored hash. Unknown email, missing
// hash, and wrong password are indistinguishable to the caller, which
// prevents account enumeration. No session token is issued.
func (s *SignupService) Login(email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// publishRegistered emits a user.registered event. Best effort: state is
// already durable, so a broker failure is only logged.
func (s *SignupService) publishRegistered(userID uint, email, username string) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"userID":   userID,
		"email":    email,
		"username": username,
	})
	if err != nil {
		log.Printf("Failed to marshal user.registered event: %v", err)
		return
	}
	if err := s.events.Publish("user.registered", body); err != nil {
		log.Printf("Warning: failed to publish user.registered for user %d: %v", userID, err)
	}
}
