package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bloom/internal/config"
	"github.com/example/bloom/internal/models"
	"github.com/example/bloom/internal/notify"
	"github.com/example/bloom/internal/otp"
	"github.com/example/bloom/internal/utils"
)

// AuthHandler bundles dependencies for OTP login/signup and admin login.
type AuthHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	otp    *otp.Service
	outbox *notify.Outbox
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, otpService *otp.Service, outbox *notify.Outbox) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, otp: otpService, outbox: outbox}
}

type sendOTPRequest struct {
	Identifier string `json:"identifier"`
}

// SendOTP issues a login code to an email or phone identifier.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var req sendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return fiber.NewError(fiber.StatusBadRequest, "identifier is required")
	}

	kind, err := h.otp.Issue(c.Context(), identifier)
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrInvalidIdentifier):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, otp.ErrTooSoon):
			return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
		default:
			return err
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"type":    kind,
	})
}

type verifyOTPRequest struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
}

// VerifyOTP validates a submitted code and signs the shopper in, creating the
// account on first verification.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "identifier and code are required")
	}

	kind, err := otp.ClassifyIdentifier(identifier)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.otp.Verify(c.Context(), identifier, req.Code); err != nil {
		var mismatch *otp.MismatchError
		switch {
		case errors.Is(err, otp.ErrNotFound):
			// expired and never-requested look the same on purpose
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, otp.ErrAttemptsExceeded):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.As(err, &mismatch):
			return fiber.NewError(fiber.StatusBadRequest, mismatch.Error())
		case errors.Is(err, otp.ErrConflict):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		default:
			return err
		}
	}

	user, isNew, err := h.findOrCreateUser(identifier, kind)
	if err != nil {
		return err
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	if isNew && kind == otp.KindEmail {
		h.outbox.Enqueue(notify.WelcomeMessage(user.Email, user.FirstName))
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"is_new_user": isNew,
		"token":       token,
		"user": fiber.Map{
			"id":           user.ID,
			"display_name": user.DisplayName,
			"email":        user.Email,
			"phone":        user.Phone,
			"is_verified":  user.IsVerified,
		},
	})
}

func (h *AuthHandler) findOrCreateUser(identifier, kind string) (*models.User, bool, error) {
	column := "email"
	if kind == otp.KindPhone {
		column = "phone"
	}

	var user models.User
	err := h.db.Where(column+" = ?", identifier).First(&user).Error
	if err == nil {
		if !user.IsVerified {
			if err := h.db.Model(&user).Update("is_verified", true).Error; err != nil {
				return nil, false, err
			}
			user.IsVerified = true
		}
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = models.User{IsVerified: true}
	if kind == otp.KindPhone {
		user.Phone = identifier
	} else {
		user.Email = identifier
	}
	if err := h.db.Create(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLogin authenticates an admin account with email and password.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req adminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("email = ? AND is_admin = ?", req.Email, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user": fiber.Map{
			"id":           user.ID,
			"display_name": fmt.Sprintf("%s %s", user.FirstName, user.LastName),
			"email":        user.Email,
		},
	})
}
