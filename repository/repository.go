// Package repository defines the persistence boundary of the ordering workflow.
// Implementations return plain model records and never hold business rules.
package repository

import (
	"context"
	"errors"

	"github.com/Govind-619/DishDash/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// CatalogRepository reads the menu. Items are written only by seeding.
type CatalogRepository interface {
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
	ListMenuItemsByCategory(ctx context.Context, category string) ([]models.MenuItem, error)
	FindMenuItemByName(ctx context.Context, name string) (*models.MenuItem, error)
	// SeedMenuItems inserts items whose name is not present yet and returns how many were added.
	SeedMenuItems(ctx context.Context, items []models.MenuItem) (int, error)
}

// UserRepository stores user accounts
type UserRepository interface {
	// CreateUser returns ErrDuplicate when the username is taken.
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

// OrderRepository stores orders
type OrderRepository interface {
	// CreateOrder returns ErrDuplicate when the user already used the idempotency key.
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrderByID(ctx context.Context, id uint) (*models.Order, error)
	// FindOrderByPaymentIntentID finds the order an intent was created for.
	FindOrderByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error)
	FindOrderByIdempotencyKey(ctx context.Context, userID uint, key string) (*models.Order, error)
	SetPaymentIntent(ctx context.Context, orderID uint, intentID string) error
	// MarkPaid moves a Pending order to Paid. It reports false when the order was not Pending.
	MarkPaid(ctx context.Context, orderID uint) (bool, error)
	// DeletePendingOrder removes the order only while it is Pending and owned by userID.
	DeletePendingOrder(ctx context.Context, orderID, userID uint) (bool, error)
	// ListOrdersByUser returns the user's orders newest first.
	ListOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error)
	// ListOrdersByUserPage returns one page of the user's orders, newest first, and
	// the total number of orders the user has.
	ListOrdersByUserPage(ctx context.Context, userID uint, offset, limit int) ([]models.Order, int64, error)
}

// PaymentRepository stores confirmed payments and unmatched confirmations
type PaymentRepository interface {
	// CreatePayment reports false, without error, when a payment for the same
	// intent id already exists.
	CreatePayment(ctx context.Context, payment *models.Payment) (bool, error)
	FindPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	FindPaymentByOrderID(ctx context.Context, orderID uint) (*models.Payment, error)
	CountPaymentsByIntentID(ctx context.Context, intentID string) (int64, error)
	// RecordUnmatchedEvent is idempotent on the intent id.
	RecordUnmatchedEvent(ctx context.Context, event *models.UnmatchedPaymentEvent) error
}

// Store groups the repositories and runs them inside one transaction when needed.
type Store interface {
	CatalogRepository
	UserRepository
	OrderRepository
	PaymentRepository

	// WithinTransaction commits when fn returns nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}
