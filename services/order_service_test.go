package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Govind-619/DishDash/config"
	"github.com/Govind-619/DishDash/metrics"
	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/payment"
	"github.com/Govind-619/DishDash/payment/paymenttest"
	"github.com/Govind-619/DishDash/services"
	"github.com/Govind-619/DishDash/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	cases := map[string]int64{
		"25.98": 2598,
		"12.99": 1299,
		"0.005": 1,
		"10":    1000,
		"8.994": 899,
	}
	for in, want := range cases {
		assert.Equal(t, want, services.ToMinorUnits(decimal.RequireFromString(in)), in)
	}
	assert.Equal(t, "25.98", services.FromMinorUnits(2598).StringFixed(2))
}

func TestCreateOrderPricesAndCreatesIntent(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")

	placed := f.place(t, user, "Margherita Pizza", "2")

	assert.Equal(t, "25.98", placed.Total.StringFixed(2))
	assert.Equal(t, int64(2598), placed.AmountMinor)
	assert.Equal(t, "usd", placed.Currency)
	assert.NotEmpty(t, placed.ClientSecret)
	assert.Equal(t, "pk_test", placed.PublishableKey)
	assert.Equal(t, models.OrderStatusPending, placed.Order.Status)

	req, ok := f.gateway.LastRequest()
	require.True(t, ok)
	assert.Equal(t, int64(2598), req.AmountMinor)
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, placed.Order.ID, req.OrderID)
	assert.NotEmpty(t, req.IdempotencyKey)

	stored, err := f.store.FindOrderByID(context.Background(), placed.Order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentIntentID)
	assert.Equal(t, placed.IntentID, *stored.PaymentIntentID)
	assert.Equal(t, "25.98", stored.TotalAmount.StringFixed(2))
	assert.Equal(t, user.ID, stored.UserID)
}

func TestCreateOrderRejectsInvalidInput(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")

	cases := []struct {
		name string
		in   services.OrderInput
		msg  string
	}{
		{"missing dish", services.OrderInput{CustomerName: "Ada", Quantity: "1"}, utils.ErrMissingOrderFields},
		{"missing name", services.OrderInput{DishName: "Cheeseburger", Quantity: "1"}, utils.ErrMissingOrderFields},
		{"non numeric quantity", services.OrderInput{CustomerName: "Ada", DishName: "Cheeseburger", Quantity: "abc"}, utils.ErrInvalidQuantity},
		{"zero quantity", services.OrderInput{CustomerName: "Ada", DishName: "Cheeseburger", Quantity: "0"}, utils.ErrInvalidQuantity},
		{"negative quantity", services.OrderInput{CustomerName: "Ada", DishName: "Cheeseburger", Quantity: "-3"}, utils.ErrInvalidQuantity},
		{"unknown dish", services.OrderInput{CustomerName: "Ada", DishName: "Lobster", Quantity: "1"}, utils.ErrInvalidMenuItem},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(context.Background(), user, tc.in)
			require.Error(t, err)
			assert.True(t, utils.IsValidationError(err))
			assert.Equal(t, tc.msg, utils.GetAppError(err).Message)
		})
	}

	assert.Zero(t, countOrders(t, f.store))
	assert.Empty(t, f.gateway.Requests)
}

func TestCreateOrderRemovesOrderWhenIntentFails(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")
	f.gateway.Err = errors.New("processor unavailable")

	_, err := f.orders.CreateOrder(context.Background(), user, services.OrderInput{
		CustomerName: "Ada",
		DishName:     "Caesar Salad",
		Quantity:     "1",
	})
	require.Error(t, err)
	assert.Equal(t, 502, utils.GetAppError(err).Code)
	assert.Equal(t, utils.ErrPaymentFailed, utils.GetAppError(err).Message)
	assert.Zero(t, countOrders(t, f.store))
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	f := newWebhookFixture(t)
	ada := f.user(t, "ada")
	bob := f.user(t, "bob")
	in := services.OrderInput{
		CustomerName:   "Ada",
		DishName:       "Cheeseburger",
		Quantity:       "1",
		IdempotencyKey: "key-1",
	}

	first, err := f.orders.CreateOrder(context.Background(), ada, in)
	require.NoError(t, err)

	_, err = f.orders.CreateOrder(context.Background(), ada, in)
	require.Error(t, err)
	assert.True(t, utils.IsConflictError(err))
	assert.Contains(t, utils.GetAppError(err).Message, "order")
	assert.Len(t, f.gateway.Requests, 1)

	// keys are scoped to the submitting user
	_, err = f.orders.CreateOrder(context.Background(), bob, in)
	require.NoError(t, err)

	assert.Equal(t, int64(2), countOrders(t, f.store))
	assert.NotZero(t, first.Order.ID)
}

func TestPaymentSuccessWebhookModeDoesNotMarkPaid(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")
	placed := f.place(t, user, "Cheeseburger", "1")

	res, err := f.orders.PaymentSuccess(context.Background(), user, placed.Order.ID)
	require.NoError(t, err)
	assert.False(t, res.Confirmed)
	assert.Equal(t, models.OrderStatusPending, res.Order.Status)

	stored, err := f.store.FindOrderByID(context.Background(), placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestPaymentSuccessTrustModeMarksPaid(t *testing.T) {
	f := newFixture(t, config.RedirectModeTrust, nil)
	user := f.user(t, "ada")
	placed := f.place(t, user, "Cheeseburger", "1")

	res, err := f.orders.PaymentSuccess(context.Background(), user, placed.Order.ID)
	require.NoError(t, err)
	assert.True(t, res.Confirmed)

	stored, err := f.store.FindOrderByID(context.Background(), placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestPaymentSuccessRejectsOtherUsers(t *testing.T) {
	f := newFixture(t, config.RedirectModeTrust, nil)
	ada := f.user(t, "ada")
	mallory := f.user(t, "mallory")
	placed := f.place(t, ada, "Cheeseburger", "1")

	_, err := f.orders.PaymentSuccess(context.Background(), mallory, placed.Order.ID)
	require.Error(t, err)
	assert.True(t, utils.IsForbiddenError(err))

	stored, err := f.store.FindOrderByID(context.Background(), placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestPaymentSuccessUnknownOrder(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")

	_, err := f.orders.PaymentSuccess(context.Background(), user, 999)
	require.Error(t, err)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestPaymentCancel(t *testing.T) {
	f := newWebhookFixture(t)
	ada := f.user(t, "ada")
	mallory := f.user(t, "mallory")
	placed := f.place(t, ada, "Cheeseburger", "1")
	ctx := context.Background()

	err := f.orders.PaymentCancel(ctx, mallory, placed.Order.ID)
	require.Error(t, err)
	assert.True(t, utils.IsForbiddenError(err))
	_, err = f.store.FindOrderByID(ctx, placed.Order.ID)
	require.NoError(t, err, "non-owner cancel must leave the order")

	require.NoError(t, f.orders.PaymentCancel(ctx, ada, placed.Order.ID))
	_, err = f.store.FindOrderByID(ctx, placed.Order.ID)
	assert.Error(t, err)

	err = f.orders.PaymentCancel(ctx, ada, placed.Order.ID)
	assert.True(t, utils.IsNotFoundError(err))
}

func TestPaymentCancelPaidOrderConflicts(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")
	placed := f.place(t, user, "Cheeseburger", "1")
	ctx := context.Background()

	_, err := f.store.MarkPaid(ctx, placed.Order.ID)
	require.NoError(t, err)

	err = f.orders.PaymentCancel(ctx, user, placed.Order.ID)
	require.Error(t, err)
	assert.True(t, utils.IsConflictError(err))

	stored, err := f.store.FindOrderByID(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newWebhookFixture(t)
	ada := f.user(t, "ada")
	bob := f.user(t, "bob")

	first := f.place(t, ada, "Cheeseburger", "1")
	time.Sleep(5 * time.Millisecond)
	second := f.place(t, ada, "Caesar Salad", "3")
	f.place(t, bob, "Chicken Alfredo", "1")

	orders, err := f.orders.History(context.Background(), ada)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.Order.ID, orders[0].ID)
	assert.Equal(t, first.Order.ID, orders[1].ID)
}

func TestOrderWithPayment(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")
	placed := f.place(t, user, "Cheeseburger", "2")
	ctx := context.Background()

	order, p, err := f.orders.OrderWithPayment(ctx, user, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.Order.ID, order.ID)
	assert.Nil(t, p)

	body, sig := paymentEvent(placed)
	_, err = f.hooks.Handle(ctx, body, sig)
	require.NoError(t, err)

	order, p, err = f.orders.OrderWithPayment(ctx, user, placed.Order.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, order.IsPaid())
	assert.Equal(t, "21.98", p.Amount.StringFixed(2))
}

// slowGateway holds CreateIntent until released
type slowGateway struct {
	*paymenttest.Gateway
	entered chan struct{}
	release chan struct{}
}

func (g *slowGateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.Gateway.CreateIntent(ctx, req)
}

func TestWebhookRecordsWhileIntentCallIsSlow(t *testing.T) {
	f := newWebhookFixture(t)
	ada := f.user(t, "ada")
	bob := f.user(t, "bob")
	placed := f.place(t, bob, "Cheeseburger", "1")

	slow := &slowGateway{Gateway: f.gateway, entered: make(chan struct{}, 1), release: make(chan struct{})}
	orders := services.NewOrderService(f.store, slow, metrics.NewNop(), config.RedirectModeWebhook)

	done := make(chan error, 1)
	go func() {
		_, err := orders.CreateOrder(context.Background(), ada, services.OrderInput{
			CustomerName: "Ada",
			DishName:     "Caesar Salad",
			Quantity:     "1",
		})
		done <- err
	}()
	<-slow.entered

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	body, sig := paymentEvent(placed)
	start := time.Now()
	outcome, err := f.hooks.Handle(ctx, body, sig)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeRecorded, outcome)
	assert.Less(t, time.Since(start), 2*time.Second)

	close(slow.release)
	require.NoError(t, <-done)

	order, err := f.store.FindOrderByID(context.Background(), placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	history, err := f.orders.History(context.Background(), ada)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.OrderStatusPending, history[0].Status)
	assert.NotNil(t, history[0].PaymentIntentID)
}
