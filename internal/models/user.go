package models

import "time"

// User represents a shopper or admin account. Shoppers sign in with OTP only;
// PasswordHash is set for admin accounts.
type User struct {
	BaseModel
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Email        string        `gorm:"index" json:"email"`
	Phone        string        `gorm:"index" json:"phone"`
	DisplayName  string        `json:"display_name"`
	PasswordHash string        `json:"-"`
	IsVerified   bool          `json:"is_verified"`
	IsAdmin      bool          `json:"is_admin"`
	Addresses    []Address     `json:"addresses,omitempty"`
	Cards        []PaymentCard `json:"cards,omitempty"`
	UPIHandles   []UPIHandle   `json:"upi_handles,omitempty"`
	Orders       []Order       `json:"orders,omitempty"`
}

// OTPRecord keeps track of one-time codes issued to an identifier.
// At most one live (unverified, unexpired) record exists per identifier.
type OTPRecord struct {
	BaseModel
	Identifier string    `gorm:"index" json:"identifier"`
	Code       string    `json:"-"`
	Kind       string    `json:"kind"` // email|phone
	Verified   bool      `json:"verified"`
	Attempts   int       `json:"attempts"`
	ExpiresAt  time.Time `json:"expires_at"`
}
