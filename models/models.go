package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User represents a registered customer account
type User struct {
	gorm.Model
	Username     string  `gorm:"uniqueIndex;size:80;not null" json:"username"`
	PasswordHash string  `gorm:"size:128;not null" json:"-"`
	Orders       []Order `json:"orders,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeSave keeps usernames free of surrounding whitespace
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Username = strings.TrimSpace(u.Username)
	return nil
}

// MenuItem is a dish on the restaurant menu. Name is the natural key used by orders.
type MenuItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	Category    string          `json:"category" gorm:"size:50;index"`
}

// BeforeSave hook to standardize menu item names
func (m *MenuItem) BeforeSave(tx *gorm.DB) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Category = strings.TrimSpace(m.Category)
	return nil
}
