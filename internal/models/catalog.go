package models

import "time"

// Category groups products in the catalog. Master data.
type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

// Product is a sellable catalog item. Master data.
type Product struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID uint      `gorm:"index;not null" json:"category_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Price      float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	Cost       float64   `gorm:"type:decimal(12,2);default:0" json:"cost"`
	Stock      int       `gorm:"not null;default:0" json:"stock"`
	MinStock   int       `gorm:"not null;default:0" json:"min_stock"`
	ImageURL   string    `gorm:"size:512" json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
