package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const PaymentStatusSucceeded = "Succeeded"

// Payment records money the processor confirmed for an order.
// PaymentIntentID is unique so a replayed confirmation cannot record a second payment.
type Payment struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	OrderID         uint            `json:"order_id" gorm:"not null;index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:numeric(10,2);not null"`
	Currency        string          `json:"currency" gorm:"size:3;not null"`
	Status          string          `json:"status" gorm:"size:20;not null"` // Succeeded
	PaymentIntentID string          `json:"payment_intent_id" gorm:"size:255;uniqueIndex;not null"`
	CreatedAt       time.Time       `json:"created_at"`
}

// UnmatchedPaymentEvent keeps confirmations whose order could not be found, for reconciliation.
type UnmatchedPaymentEvent struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	PaymentIntentID string    `json:"payment_intent_id" gorm:"size:255;uniqueIndex;not null"`
	OrderRef        string    `json:"order_ref" gorm:"size:64"`
	EventType       string    `json:"event_type" gorm:"size:64"`
	AmountMinor     int64     `json:"amount_minor"`
	Currency        string    `json:"currency" gorm:"size:3"`
	Reason          string    `json:"reason" gorm:"size:255"`
	CreatedAt       time.Time `json:"created_at"`
}
