package models

import "time"

// Refund reverses all or part of a sale. Transactional data.
type Refund struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SaleID    uint      `gorm:"index;not null" json:"sale_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"` // staff who approved it
	Reason    string    `gorm:"size:512" json:"reason,omitempty"`
	Total     float64   `gorm:"type:decimal(12,2);not null" json:"total"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	Items []RefundItem `gorm:"foreignKey:RefundID" json:"items,omitempty"`
}

func (Refund) TableName() string {
	return "refunds"
}

// RefundItem is one refunded product line. Transactional data.
type RefundItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	RefundID  uint    `gorm:"index;not null" json:"refund_id"`
	ProductID uint    `gorm:"index;not null" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Amount    float64 `gorm:"type:decimal(12,2);not null" json:"amount"`
}

func (RefundItem) TableName() string {
	return "refund_items"
}
