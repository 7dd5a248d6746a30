package models

import "github.com/google/uuid"

// Address is a saved shipping address. Exactly one address per user carries
// IsDefault at any time.
type Address struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Label       string    `json:"label"`
	FullName    string    `json:"full_name"`
	AddressLine string    `json:"address_line"`
	Apartment   string    `json:"apartment"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PostalCode  string    `json:"postal_code"`
	Country     string    `json:"country"`
	Phone       string    `json:"phone"`
	IsDefault   bool      `json:"is_default"`
}

func (Address) FlagColumn() string  { return "is_default" }
func (Address) ScopeColumn() string { return "user_id" }

// PaymentCard stores a tokenized card. Raw PANs are never persisted; Token is
// the gateway reference and Last4 is display-only.
type PaymentCard struct {
	BaseModel
	UserID         uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	CardholderName string    `json:"cardholder_name"`
	Brand          string    `json:"brand"`
	Last4          string    `json:"last4"`
	ExpiryMonth    int       `json:"expiry_month"`
	ExpiryYear     int       `json:"expiry_year"`
	Token          string    `json:"-"`
	IsDefault      bool      `json:"is_default"`
}

func (PaymentCard) FlagColumn() string  { return "is_default" }
func (PaymentCard) ScopeColumn() string { return "user_id" }

type UPIHandle struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Handle    string    `json:"handle"`
	Provider  string    `json:"provider"`
	IsDefault bool      `json:"is_default"`
}

func (UPIHandle) FlagColumn() string  { return "is_default" }
func (UPIHandle) ScopeColumn() string { return "user_id" }
