package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Category struct {
	BaseModel
	Name         string    `json:"name"`
	Slug         string    `gorm:"uniqueIndex" json:"slug"`
	Description  string    `json:"description"`
	HeroImage    string    `json:"hero_image"`
	ProductCount int       `json:"product_count"`
	Products     []Product `json:"products,omitempty"`
}

type Product struct {
	BaseModel
	Slug              string         `gorm:"uniqueIndex" json:"slug"`
	Name              string         `json:"name"`
	ShortDescription  string         `json:"short_description"`
	LongDescription   string         `json:"long_description"`
	Price             float64        `json:"price"`
	CompareAtPrice    float64        `json:"compare_at_price"`
	Currency          string         `json:"currency"`
	HeroImage         string         `json:"hero_image"`
	Images            pq.StringArray `gorm:"type:text[]" json:"images"`
	Sizes             pq.StringArray `gorm:"type:text[]" json:"sizes"`
	Colors            pq.StringArray `gorm:"type:text[]" json:"colors"`
	InventoryQuantity int            `json:"inventory_quantity"`
	IsActive          bool           `json:"is_active"`
	RatingAverage     float64        `json:"rating_average"`
	RatingCount       int            `json:"rating_count"`
	CategoryID        *uuid.UUID     `gorm:"type:uuid" json:"category_id"`
	Category          *Category      `json:"category,omitempty"`
}
