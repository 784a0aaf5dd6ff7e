package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status constants. A cancelled order is deleted rather than given a status.
const (
	OrderStatusPending = "Pending"
	OrderStatusPaid    = "Paid"
)

type Order struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	UserID              uint            `gorm:"not null;index;uniqueIndex:idx_orders_user_idempotency,priority:1" json:"user_id"`
	CustomerName        string          `gorm:"size:100;not null" json:"customer_name"`
	DishName            string          `gorm:"size:100;not null" json:"dish_name"`
	Quantity            int             `gorm:"not null" json:"quantity"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions,omitempty"`
	TotalAmount         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Status              string          `gorm:"size:20;not null;default:Pending;index" json:"status"`
	PaymentIntentID     *string         `gorm:"size:255;uniqueIndex" json:"payment_intent_id,omitempty"`
	IdempotencyKey      *string         `gorm:"size:100;uniqueIndex:idx_orders_user_idempotency,priority:2" json:"-"`
	OrderDate           time.Time       `gorm:"not null;index" json:"order_date"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// IsPaid reports whether the order reached its terminal paid state
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}
