package models

import "time"

// Customer is a registered buyer with purchase history. Transactional data.
type Customer struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Phone      string    `gorm:"size:30" json:"phone,omitempty"`
	Points     int       `gorm:"not null;default:0" json:"points"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// Guest is an anonymous walk-in buyer attached to a sale. Transactional data.
type Guest struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Guest) TableName() string {
	return "guests"
}

// Sale is one completed checkout. Transactional data.
type Sale struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"` // cashier who rang it up
	CustomerID *uint     `gorm:"index" json:"customer_id,omitempty"`
	GuestID    *uint     `gorm:"index" json:"guest_id,omitempty"`
	Total      float64   `gorm:"type:decimal(12,2);not null" json:"total"`
	Paid       float64   `gorm:"type:decimal(12,2);not null" json:"paid"`
	Change     float64   `gorm:"type:decimal(12,2);not null" json:"change"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one product line on a sale. Transactional data.
type SaleItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	SaleID    uint    `gorm:"index;not null" json:"sale_id"`
	ProductID uint    `gorm:"index;not null" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal  float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}

func (SaleItem) TableName() string {
	return "sale_items"
}
