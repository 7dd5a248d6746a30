package models

import "time"

// Coupon is a discount rule identified by an uppercase code.
type Coupon struct {
	BaseModel
	Code           string    `gorm:"uniqueIndex" json:"code"`
	Description    string    `json:"description"`
	DiscountType   string    `json:"discount_type"` // percentage|flat
	DiscountValue  float64   `json:"discount_value"`
	MinPurchase    float64   `json:"min_purchase"`
	MaxDiscount    float64   `json:"max_discount"` // 0 means no cap
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"` // active|inactive
	FirstOrderOnly bool      `json:"first_order_only"`
}
