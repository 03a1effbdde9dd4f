package models

import "time"

// Promotion is a time-bounded discount campaign. Transactional data.
type Promotion struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	DiscountPct  float64   `gorm:"type:decimal(5,2);not null" json:"discount_pct"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Products []PromotionProduct `gorm:"foreignKey:PromotionID" json:"products,omitempty"`
}

func (Promotion) TableName() string {
	return "promotions"
}

// PromotionProduct links a promotion to a product. Transactional data.
type PromotionProduct struct {
	ID          uint `gorm:"primaryKey;autoIncrement" json:"id"`
	PromotionID uint `gorm:"index;not null" json:"promotion_id"`
	ProductID   uint `gorm:"index;not null" json:"product_id"`
}

func (PromotionProduct) TableName() string {
	return "promotion_products"
}
