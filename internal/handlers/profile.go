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

// ProfileHandler manages user profile and address endpoints.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns authenticated user profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":           user.ID,
			"first_name":   user.FirstName,
			"last_name":    user.LastName,
			"display_name": user.DisplayName,
			"email":        user.Email,
			"phone":        user.Phone,
			"is_verified":  user.IsVerified,
			"created_at":   user.CreatedAt,
			"updated_at":   user.UpdatedAt,
		},
	})
}

type updateProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
}

// UpdateProfile updates user profile fields.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.DisplayName != "" {
		updates["display_name"] = req.DisplayName
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}
	updates["updated_at"] = time.Now()

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "profile updated"})
}

// Address endpoints

// ListAddresses returns user addresses, default first.
func (h *ProfileHandler) ListAddresses(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var addresses []models.Address
	if err := h.db.Where("user_id = ?", userID).
		Order("is_default desc, created_at desc").
		Find(&addresses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

type createAddressRequest struct {
	Label       string `json:"label"`
	FullName    string `json:"full_name"`
	AddressLine string `json:"address_line"`
	Apartment   string `json:"apartment"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	Phone       string `json:"phone"`
	IsDefault   bool   `json:"is_default"`
}

// CreateAddress creates an address for the user. The first address a user
// saves always becomes the default.
func (h *ProfileHandler) CreateAddress(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.AddressLine == "" || req.City == "" {
		return fiber.NewError(fiber.StatusBadRequest, "address_line and city are required")
	}

	address := models.Address{
		UserID:      userID,
		Label:       req.Label,
		FullName:    req.FullName,
		AddressLine: req.AddressLine,
		Apartment:   req.Apartment,
		City:        req.City,
		State:       req.State,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		Phone:       req.Phone,
		IsDefault:   req.IsDefault,
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		first, err := defaults.FirstInScope(tx, models.Address{}, userID)
		if err != nil {
			return err
		}
		if first {
			address.IsDefault = true
		}
		if err := tx.Create(&address).Error; err != nil {
			return err
		}
		if address.IsDefault && !first {
			return defaults.SetDefault(tx, models.Address{}, userID, address.ID)
		}
		return nil
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": address})
}

type updateAddressRequest struct {
	Label       *string `json:"label"`
	FullName    *string `json:"full_name"`
	AddressLine *string `json:"address_line"`
	Apartment   *string `json:"apartment"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	PostalCode  *string `json:"postal_code"`
	Country     *string `json:"country"`
	Phone       *string `json:"phone"`
}

// UpdateAddress updates a user address. The default flag is changed through
// the set-default endpoint, not here.
func (h *ProfileHandler) UpdateAddress(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Label != nil {
		updates["label"] = *req.Label
	}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.AddressLine != nil {
		updates["address_line"] = *req.AddressLine
	}
	if req.Apartment != nil {
		updates["apartment"] = *req.Apartment
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	result := h.db.Model(&models.Address{}).
		Where("id = ? AND user_id = ?", addrID, userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "address not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "address updated"})
}

// SetDefaultAddress marks one address as the user's default.
func (h *ProfileHandler) SetDefaultAddress(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := defaults.SetDefault(h.db, models.Address{}, userID, addrID); err != nil {
		if errors.Is(err, defaults.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "address not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "default address updated"})
}

// DeleteAddress removes a user address.
func (h *ProfileHandler) DeleteAddress(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	addrID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Where("id = ? AND user_id = ?", addrID, userID).
		Delete(&models.Address{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "address deleted"})
}
