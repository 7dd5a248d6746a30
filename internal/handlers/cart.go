package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bloom/internal/middleware"
	"github.com/example/bloom/internal/models"
)

// CartHandler manages cart and wishlist endpoints.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// ListCart returns the user's cart with product details.
func (h *CartHandler) ListCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var items []models.CartItem
	if err := h.db.Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return err
	}

	var subtotal float64
	for _, item := range items {
		if item.Product != nil {
			subtotal += item.Product.Price * float64(item.Quantity)
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": items, "subtotal": subtotal})
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// AddToCart adds a product to the cart or bumps its quantity if present.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.db.First(&product, "id = ? AND is_active = ?", productID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var item models.CartItem
	err = h.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if req.Size != "" {
			item.Size = req.Size
		}
		if req.Color != "" {
			item.Color = req.Color
		}
		if err := h.db.Save(&item).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  req.Quantity,
			Size:      req.Size,
			Color:     req.Color,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
	default:
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem sets the quantity of a cart line; zero removes it.
func (h *CartHandler) UpdateCartItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity cannot be negative")
	}

	if req.Quantity == 0 {
		if err := h.db.Where("id = ? AND user_id = ?", itemID, userID).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true, "message": "item removed"})
	}

	result := h.db.Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", req.Quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "cart item not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "quantity updated"})
}

// RemoveCartItem deletes one cart line.
func (h *CartHandler) RemoveCartItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "item removed"})
}

// ClearCart empties the user's cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	if err := h.db.Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "cart cleared"})
}

// Wishlist

func (h *CartHandler) ListWishlist(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var items []models.WishlistItem
	if err := h.db.Where("user_id = ?", userID).
		Preload("Product").
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

type wishlistRequest struct {
	ProductID string `json:"product_id"`
}

// AddToWishlist saves a product to the wishlist; re-adding is a no-op.
func (h *CartHandler) AddToWishlist(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req wishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	var existing models.WishlistItem
	err = h.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&existing).Error
	if err == nil {
		return c.JSON(fiber.Map{"success": true, "data": existing})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	item := models.WishlistItem{UserID: userID, ProductID: productID}
	if err := h.db.Create(&item).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

// RemoveFromWishlist deletes a wishlist entry by product id.
func (h *CartHandler) RemoveFromWishlist(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	if err := h.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "removed from wishlist"})
}
