package services_test

import (
	"context"
	"testing"

	"github.com/Govind-619/DishDash/config"
	"github.com/Govind-619/DishDash/metrics"
	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/payment/paymenttest"
	"github.com/Govind-619/DishDash/repository"
	"github.com/Govind-619/DishDash/repository/repotest"
	"github.com/Govind-619/DishDash/services"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *repository.GormStore
	gateway *paymenttest.Gateway
	orders  *services.OrderService
	hooks   *services.WebhookService
	auth    *services.AuthService
	menu    *services.MenuService
}

func newFixture(t *testing.T, redirectMode string, notifier services.PaymentNotifier) *fixture {
	t.Helper()
	store := repotest.NewStore(t)
	gw := paymenttest.New()
	m := metrics.NewNop()

	menu := services.NewMenuService(store)
	_, err := menu.SeedDefaults(context.Background())
	require.NoError(t, err)

	return &fixture{
		store:   store,
		gateway: gw,
		orders:  services.NewOrderService(store, gw, m, redirectMode),
		hooks:   services.NewWebhookService(store, gw, notifier, m),
		auth:    services.NewAuthService(store, "test-secret"),
		menu:    menu,
	}
}

func newWebhookFixture(t *testing.T) *fixture {
	return newFixture(t, config.RedirectModeWebhook, nil)
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), name, "password123")
	require.NoError(t, err)
	return u
}

func (f *fixture) place(t *testing.T, user *models.User, dish, qty string) *services.PlacedOrder {
	t.Helper()
	placed, err := f.orders.CreateOrder(context.Background(), user, services.OrderInput{
		CustomerName: "Ada",
		DishName:     dish,
		Quantity:     qty,
	})
	require.NoError(t, err)
	return placed
}

func countOrders(t *testing.T, store *repository.GormStore) int64 {
	t.Helper()
	var n int64
	require.NoError(t, store.DB().Model(&models.Order{}).Count(&n).Error)
	return n
}

func countPayments(t *testing.T, store *repository.GormStore) int64 {
	t.Helper()
	var n int64
	require.NoError(t, store.DB().Model(&models.Payment{}).Count(&n).Error)
	return n
}
