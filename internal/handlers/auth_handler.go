package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"

	"datafarm/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for the signup and login flow.
type AuthHandler struct {
	signupService *services.SignupService
	validate      *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(signupService *services.SignupService) *AuthHandler {
	return &AuthHandler{
		signupService: signupService,
		validate:      validator.New(),
	}
}

// RegisterRoutes registers the signup/login routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/auth-email", h.HandleAuthEmail)
	userRoutes.Post("/verify-otp", h.HandleVerifyOTP)
	userRoutes.Post("/sign-up", h.HandleSignUp)
	userRoutes.Post("/login", h.HandleLogin)
}

// EmailRequest represents the request body for requesting a code.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleAuthEmail issues and mails a verification code for the email.
func (h *AuthHandler) HandleAuthEmail(c *fiber.Ctx) error {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing auth-email request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"result": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	err := h.signupService.RequestVerification(req.Email)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"result": "Verification code sent"})
	case errors.Is(err, services.ErrAlreadyVerified):
		return c.JSON(fiber.Map{"result": "Account is already verified"})
	case errors.Is(err, services.ErrDeliveryFailed):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"result": "Failed to deliver verification mail",
		})
	default:
		log.Printf("auth-email error for %s: %v", req.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"result": "Could not send verification code",
		})
	}
}

// OTPRequest represents the request body for confirming a code.
type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// HandleVerifyOTP redeems a verification code.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req OTPRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing verify-otp request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"result": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	err := h.signupService.ConfirmVerification(req.Email, req.Code)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"result": "Email verified"})
	case errors.Is(err, services.ErrAlreadyVerified):
		return c.JSON(fiber.Map{"result": "Account is already verified"})
	case errors.Is(err, services.ErrUnknownEmail):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"result": "No account for this email; request a verification code first",
		})
	case errors.Is(err, services.ErrInvalidCode):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"result": "Code is invalid or expired",
		})
	default:
		log.Printf("verify-otp error for %s: %v", req.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"result": "Verification failed",
		})
	}
}

// SignUpRequest represents the multipart form fields for profile completion.
type SignUpRequest struct {
	Username      string `validate:"required,min=3,max=100"`
	Email         string `validate:"required,email"`
	PhoneNumber   string
	Password      string `validate:"required,min=6"`
	SiDo          string `validate:"required"`
	SiGunGu       string `validate:"required"`
	Dong          string `validate:"required"`
	DetailAddress string `validate:"required"`
}

// HandleSignUp completes a verified account's profile from a multipart form,
// optionally storing an uploaded profile image (field "psa").
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	req := SignUpRequest{
		Username:      c.FormValue("username"),
		Email:         c.FormValue("email"),
		PhoneNumber:   c.FormValue("phone_number"),
		Password:      c.FormValue("password"),
		SiDo:          c.FormValue("si_do"),
		SiGunGu:       c.FormValue("si_gun_gu"),
		Dong:          c.FormValue("dong"),
		DetailAddress: c.FormValue("detail_address"),
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	in := services.ProfileInput{
		Username:      req.Username,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		Password:      req.Password,
		SiDo:          req.SiDo,
		SiGunGu:       req.SiGunGu,
		Dong:          req.Dong,
		DetailAddress: req.DetailAddress,
	}

	if file, err := c.FormFile("psa"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			log.Printf("Error opening uploaded file: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"result": "Could not read uploaded file",
			})
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			log.Printf("Error reading uploaded file: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"result": "Could not read uploaded file",
			})
		}
		in.ImageName = file.Filename
		in.ImageBytes = data
	}

	err := h.signupService.CompleteProfile(in)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"result": "Registration complete"})
	case errors.Is(err, services.ErrUnknownEmail):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"result": "Request a verification code for this email first",
		})
	case errors.Is(err, services.ErrNotVerified):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"result": "Confirm the emailed verification code first",
		})
	case errors.Is(err, services.ErrAlreadyRegistered):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"result": "Email is already registered",
		})
	default:
		log.Printf("sign-up error for %s: %v", req.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"result": "Registration failed",
		})
	}
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin checks credentials. The response for an unknown email and a
// wrong password is identical on purpose.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"result": "Invalid request body",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user, err := h.signupService.Login(req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			log.Printf("login error for %s: %v", req.Email, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"result": "Login failed",
			})
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"result": "Email or password is incorrect",
		})
	}

	return c.JSON(fiber.Map{
		"result":  "Login successful",
		"user_id": user.ID,
		"email":   user.Email,
	})
}

// validationError renders validator failures as a 400 with per-field messages.
func validationError(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"result": "Validation failed",
		"errors": errorMessages,
	})
}
