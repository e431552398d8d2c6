package models

import (
	"time"
)

// Product represents a tracked StockX product
type Product struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Slug           string    `json:"slug" gorm:"unique;not null"`
	Name           string    `json:"name" gorm:"not null"`
	DipThreshold   *float64  `json:"dip_threshold"`   // percent, 1-99; nil means use the process default
	ReferencePrice *float64  `json:"reference_price"` // price observed at registration, display only
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PricePoint represents one observed price for a product.
// Rows are append-only and never edited after write.
type PricePoint struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"index;not null"`
	Price     float64   `json:"price" gorm:"not null"`
	ScannedAt time.Time `json:"scanned_at" gorm:"index;not null"`
}

// Alert represents a detected, non-suppressed price dip.
// ProductName and Slug are snapshots so the record survives product deletion.
type Alert struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ProductID      uint      `json:"product_id" gorm:"index;not null"`
	ProductName    string    `json:"product_name"`
	Slug           string    `json:"slug"`
	AlertPrice     float64   `json:"alert_price"`
	ReferencePrice float64   `json:"reference_price"` // 30d median at trigger time
	DiscountPct    float64   `json:"discount_pct"`
	TriggeredAt    time.Time `json:"triggered_at" gorm:"index;not null"`
}
