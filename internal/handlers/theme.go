package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bloom/internal/defaults"
	"github.com/example/bloom/internal/models"
)

// ThemeHandler manages storefront themes. Exactly one theme is active at a
// time, store-wide.
type ThemeHandler struct {
	db *gorm.DB
}

// NewThemeHandler constructs ThemeHandler.
func NewThemeHandler(db *gorm.DB) *ThemeHandler {
	return &ThemeHandler{db: db}
}

// ListThemes returns all themes, active first.
func (h *ThemeHandler) ListThemes(c *fiber.Ctx) error {
	var items []models.Theme
	if err := h.db.Order("is_active desc, created_at desc").Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

// GetActiveTheme returns the currently active theme.
func (h *ThemeHandler) GetActiveTheme(c *fiber.Ctx) error {
	var item models.Theme
	if err := h.db.First(&item, "is_active = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no active theme")
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

// CreateTheme adds a theme. The first theme created becomes active.
func (h *ThemeHandler) CreateTheme(c *fiber.Ctx) error {
	var item models.Theme
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if item.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		first, err := defaults.FirstInScope(tx, models.Theme{}, nil)
		if err != nil {
			return err
		}
		if first {
			item.IsActive = true
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		if item.IsActive && !first {
			return defaults.SetDefault(tx, models.Theme{}, nil, item.ID)
		}
		return nil
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// UpdateTheme edits palette fields. Activation goes through ActivateTheme.
func (h *ThemeHandler) UpdateTheme(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var item models.Theme
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "theme not found")
		}
		return err
	}

	wasActive := item.IsActive
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	item.ID = id
	item.IsActive = wasActive

	if err := h.db.Save(&item).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

// ActivateTheme makes one theme active and deactivates the rest atomically.
func (h *ThemeHandler) ActivateTheme(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := defaults.SetDefault(h.db, models.Theme{}, nil, id); err != nil {
		if errors.Is(err, defaults.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "theme not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "theme activated"})
}

// DeleteTheme removes a theme. Deleting the active theme is rejected so the
// store is never left without one; activate a replacement first.
func (h *ThemeHandler) DeleteTheme(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := defaults.DeleteInactive(h.db, models.Theme{}, id); err != nil {
		switch {
		case errors.Is(err, defaults.ErrActiveRecord):
			return fiber.NewError(fiber.StatusConflict, "cannot delete the active theme")
		case errors.Is(err, defaults.ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, "theme not found")
		}
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
