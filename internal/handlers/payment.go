package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bloom/internal/defaults"
	"github.com/example/bloom/internal/middleware"
	"github.com/example/bloom/internal/models"
)

// PaymentHandler manages stored payment methods: cards and UPI handles.
type PaymentHandler struct {
	db *gorm.DB
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(db *gorm.DB) *PaymentHandler {
	return &PaymentHandler{db: db}
}

// Cards

func (h *PaymentHandler) ListCards(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var cards []models.PaymentCard
	if err := h.db.Where("user_id = ?", userID).
		Order("is_default desc, created_at desc").
		Find(&cards).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": cards})
}

type createCardRequest struct {
	CardholderName string `json:"cardholder_name"`
	Brand          string `json:"brand"`
	Last4          string `json:"last4"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	Token          string `json:"token"`
	IsDefault      bool   `json:"is_default"`
}

// CreateCard stores a tokenized card. The first card is always the default.
func (h *PaymentHandler) CreateCard(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createCardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Token == "" || len(req.Last4) != 4 {
		return fiber.NewError(fiber.StatusBadRequest, "token and last4 are required")
	}
	if req.ExpiryYear < time.Now().Year() {
		return fiber.NewError(fiber.StatusBadRequest, "card is expired")
	}

	card := models.PaymentCard{
		UserID:         userID,
		CardholderName: req.CardholderName,
		Brand:          req.Brand,
		Last4:          req.Last4,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		Token:          req.Token,
		IsDefault:      req.IsDefault,
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		first, err := defaults.FirstInScope(tx, models.PaymentCard{}, userID)
		if err != nil {
			return err
		}
		if first {
			card.IsDefault = true
		}
		if err := tx.Create(&card).Error; err != nil {
			return err
		}
		if card.IsDefault && !first {
			return defaults.SetDefault(tx, models.PaymentCard{}, userID, card.ID)
		}
		return nil
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": card})
}

// SetDefaultCard marks one card as the user's default.
func (h *PaymentHandler) SetDefaultCard(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	cardID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := defaults.SetDefault(h.db, models.PaymentCard{}, userID, cardID); err != nil {
		if errors.Is(err, defaults.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "card not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "default card updated"})
}

// DeleteCard removes a stored card.
func (h *PaymentHandler) DeleteCard(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	cardID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Where("id = ? AND user_id = ?", cardID, userID).
		Delete(&models.PaymentCard{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "card deleted"})
}

// UPI handles

func (h *PaymentHandler) ListUPIHandles(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var handles []models.UPIHandle
	if err := h.db.Where("user_id = ?", userID).
		Order("is_default desc, created_at desc").
		Find(&handles).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": handles})
}

type createUPIRequest struct {
	Handle    string `json:"handle"`
	Provider  string `json:"provider"`
	IsDefault bool   `json:"is_default"`
}

// CreateUPIHandle stores a UPI handle. The first handle is always the default.
func (h *PaymentHandler) CreateUPIHandle(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createUPIRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Handle == "" {
		return fiber.NewError(fiber.StatusBadRequest, "handle is required")
	}

	handle := models.UPIHandle{
		UserID:    userID,
		Handle:    req.Handle,
		Provider:  req.Provider,
		IsDefault: req.IsDefault,
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		first, err := defaults.FirstInScope(tx, models.UPIHandle{}, userID)
		if err != nil {
			return err
		}
		if first {
			handle.IsDefault = true
		}
		if err := tx.Create(&handle).Error; err != nil {
			return err
		}
		if handle.IsDefault && !first {
			return defaults.SetDefault(tx, models.UPIHandle{}, userID, handle.ID)
		}
		return nil
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": handle})
}

// SetDefaultUPIHandle marks one UPI handle as the user's default.
func (h *PaymentHandler) SetDefaultUPIHandle(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	handleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := defaults.SetDefault(h.db, models.UPIHandle{}, userID, handleID); err != nil {
		if errors.Is(err, defaults.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "upi handle not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "default upi handle updated"})
}

// DeleteUPIHandle removes a stored UPI handle.
func (h *PaymentHandler) DeleteUPIHandle(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	handleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Where("id = ? AND user_id = ?", handleID, userID).
		Delete(&models.UPIHandle{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "upi handle deleted"})
}
