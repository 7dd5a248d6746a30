package models

import "github.com/google/uuid"

type CartItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_cart_user_product,unique" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index:idx_cart_user_product,unique" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
}

type WishlistItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_wishlist_user_product,unique" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index:idx_wishlist_user_product,unique" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
}
