package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bloom/internal/coupons"
	"github.com/example/bloom/internal/middleware"
	"github.com/example/bloom/internal/models"
	"github.com/example/bloom/internal/orders"
)

// CouponHandler manages coupon administration and shopper-side validation.
type CouponHandler struct {
	db *gorm.DB
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(db *gorm.DB) *CouponHandler {
	return &CouponHandler{db: db}
}

func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	var items []models.Coupon
	if err := h.db.Order("created_at desc").Find(&items).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items})
}

type couponRequest struct {
	Code           string    `json:"code"`
	Description    string    `json:"description"`
	DiscountType   string    `json:"discount_type"`
	DiscountValue  float64   `json:"discount_value"`
	MinPurchase    float64   `json:"min_purchase"`
	MaxDiscount    float64   `json:"max_discount"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"`
	FirstOrderOnly bool      `json:"first_order_only"`
}

func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Code == "" || req.DiscountValue <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "code and a positive discount_value are required")
	}
	if req.DiscountType != coupons.DiscountPercentage && req.DiscountType != coupons.DiscountFlat {
		return fiber.NewError(fiber.StatusBadRequest, "discount_type must be percentage or flat")
	}
	if !req.EndDate.After(req.StartDate) {
		return fiber.NewError(fiber.StatusBadRequest, "end_date must be after start_date")
	}

	status := req.Status
	if status == "" {
		status = coupons.StatusActive
	}

	item := models.Coupon{
		Code:           coupons.Normalize(req.Code),
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinPurchase:    req.MinPurchase,
		MaxDiscount:    req.MaxDiscount,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         status,
		FirstOrderOnly: req.FirstOrderOnly,
	}

	if err := h.db.Create(&item).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var item models.Coupon
	if err := h.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "coupon not found")
		}
		return err
	}

	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	item.ID = id
	item.Code = coupons.Normalize(item.Code)

	if err := h.db.Save(&item).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Coupon{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type validateCouponRequest struct {
	Code        string  `json:"code"`
	OrderAmount float64 `json:"order_amount"`
}

// ValidateCoupon evaluates a code against the caller's order amount.
func (h *CouponHandler) ValidateCoupon(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req validateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" || req.OrderAmount <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "code and a positive order_amount are required")
	}

	discount, err := h.evaluateForUser(req.Code, req.OrderAmount, userID)
	if err != nil {
		return couponError(err)
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"discount_amount": discount,
	})
}

// evaluateForUser loads the coupon and the user's order history, then runs the
// pure evaluator.
func (h *CouponHandler) evaluateForUser(code string, orderAmount float64, userID uuid.UUID) (float64, error) {
	var coupon models.Coupon
	err := h.db.Where("code = ?", coupons.Normalize(code)).First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, coupons.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var orderCount int64
	if err := h.db.Model(&models.Order{}).
		Where("user_id = ? AND status <> ?", userID, orders.StatusCancelled).
		Count(&orderCount).Error; err != nil {
		return 0, err
	}

	return coupons.Evaluate(coupon, orderAmount, orderCount == 0, time.Now())
}

// couponError maps evaluator errors onto HTTP responses.
func couponError(err error) error {
	var minimum *coupons.MinimumNotMetError
	switch {
	case errors.Is(err, coupons.ErrNotFound):
		return fiber.NewError(fiber.StatusBadRequest, "invalid coupon code")
	case errors.Is(err, coupons.ErrExpired):
		return fiber.NewError(fiber.StatusBadRequest, "coupon has expired")
	case errors.Is(err, coupons.ErrNotEligible):
		return fiber.NewError(fiber.StatusBadRequest, "coupon is valid for first orders only")
	case errors.As(err, &minimum):
		return fiber.NewError(fiber.StatusBadRequest, minimum.Error())
	default:
		return err
	}
}
