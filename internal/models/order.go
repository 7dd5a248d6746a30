package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User        *User     `json:"user,omitempty"`
	OrderNumber string    `gorm:"uniqueIndex" json:"order_number"`
	Status      string    `json:"status"`
	PlacedAt    time.Time `json:"placed_at"`

	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shipping_fee"`
	Tax         float64 `json:"tax"`
	Discount    float64 `json:"discount"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
	CouponCode  string  `json:"coupon_code"`

	PaymentMethod string `json:"payment_method"`
	PaymentRef    string `json:"payment_ref"`

	// Shipping address snapshot, copied at checkout so later address edits do
	// not rewrite order history.
	ShippingAddressID *uuid.UUID `gorm:"type:uuid" json:"shipping_address_id"`
	ShippingFullName  string     `json:"shipping_full_name"`
	ShippingLine      string     `json:"shipping_line"`
	ShippingApartment string     `json:"shipping_apartment"`
	ShippingCity      string     `json:"shipping_city"`
	ShippingState     string     `json:"shipping_state"`
	ShippingPostal    string     `json:"shipping_postal"`
	ShippingPhone     string     `json:"shipping_phone"`

	DeliveredAt        *time.Time `json:"delivered_at"`
	ReturnWindowEndsAt *time.Time `json:"return_window_ends_at"`

	Items []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	Size        string     `json:"size"`
	Color       string     `json:"color"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	LineTotal   float64    `json:"line_total"`
}
