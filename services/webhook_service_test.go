package services_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/Govind-619/DishDash/metrics"
	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/payment"
	"github.com/Govind-619/DishDash/payment/paymenttest"
	"github.com/Govind-619/DishDash/services"
	"github.com/Govind-619/DishDash/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func paymentEvent(placed *services.PlacedOrder) ([]byte, string) {
	return paymenttest.SucceededEvent(placed.IntentID, placed.Order.ID, placed.AmountMinor)
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []uint
}

func (n *recordingNotifier) PaymentConfirmed(_ context.Context, order models.Order, _ models.Payment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order.ID)
	return nil
}

func TestWebhookRecordsPaymentOnce(t *testing.T) {
	notifier := &recordingNotifier{}
	f := newFixture(t, "", notifier)
	user := f.user(t, "ada")
	placed := f.place(t, user, "Margherita Pizza", "2")
	ctx := context.Background()

	body, sig := paymentEvent(placed)
	outcome, err := f.hooks.Handle(ctx, body, sig)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeRecorded, outcome)

	outcome, err = f.hooks.Handle(ctx, body, sig)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeDuplicate, outcome)

	assert.Equal(t, int64(1), countPayments(t, f.store))

	p, err := f.store.FindPaymentByIntentID(ctx, placed.IntentID)
	require.NoError(t, err)
	assert.Equal(t, "25.98", p.Amount.StringFixed(2))
	assert.Equal(t, "usd", p.Currency)
	assert.Equal(t, models.PaymentStatusSucceeded, p.Status)
	assert.Equal(t, placed.Order.ID, p.OrderID)

	order, err := f.store.FindOrderByID(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	assert.Equal(t, []uint{placed.Order.ID}, notifier.orders)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")
	placed := f.place(t, user, "Cheeseburger", "1")

	body, _ := paymentEvent(placed)
	outcome, err := f.hooks.Handle(context.Background(), body, "forged")
	require.Error(t, err)
	assert.True(t, utils.IsBadRequestError(err))
	assert.Equal(t, "Invalid signature", utils.GetAppError(err).Message)
	assert.Equal(t, services.OutcomeRejected, outcome)

	assert.Zero(t, countPayments(t, f.store))
	order, err := f.store.FindOrderByID(context.Background(), placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestWebhookRejectsBadPayload(t *testing.T) {
	f := newWebhookFixture(t)
	body := []byte("{not json")

	_, err := f.hooks.Handle(context.Background(), body, payment.SignWebhook(body, paymenttest.Secret))
	require.Error(t, err)
	assert.Equal(t, "Invalid payload", utils.GetAppError(err).Message)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	f := newWebhookFixture(t)
	body, sig := paymenttest.Sign(paymenttest.Payload{ID: "evt_1", Type: "payment_intent.created", IntentID: "pi_x"})

	outcome, err := f.hooks.Handle(context.Background(), body, sig)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeIgnored, outcome)
	assert.Zero(t, countPayments(t, f.store))
}

func TestWebhookUnknownOrderIsRecordedForReconciliation(t *testing.T) {
	f := newWebhookFixture(t)
	ctx := context.Background()

	body, sig := paymenttest.SucceededEvent("pi_orphan", 4242, 1299)
	outcome, err := f.hooks.Handle(ctx, body, sig)
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeUnmatched, outcome)
	assert.Zero(t, countPayments(t, f.store))

	// redelivery stays a single reconciliation row
	_, err = f.hooks.Handle(ctx, body, sig)
	require.NoError(t, err)

	var events []models.UnmatchedPaymentEvent
	require.NoError(t, f.store.DB().Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "pi_orphan", events[0].PaymentIntentID)
	assert.Equal(t, "4242", events[0].OrderRef)
	assert.Equal(t, int64(1299), events[0].AmountMinor)
}

func TestWebhookConfirmsAfterCancelRace(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")
	placed := f.place(t, user, "Cheeseburger", "1")
	ctx := context.Background()

	body, sig := paymentEvent(placed)
	_, err := f.hooks.Handle(ctx, body, sig)
	require.NoError(t, err)

	err = f.orders.PaymentCancel(ctx, user, placed.Order.ID)
	assert.True(t, utils.IsConflictError(err))
}

func TestKitchenNotifierSendsMail(t *testing.T) {
	var (
		mu   sync.Mutex
		to   []string
		body string
	)
	sender := gomail.SendFunc(func(from string, rcpt []string, msg io.WriterTo) error {
		mu.Lock()
		defer mu.Unlock()
		to = rcpt
		var sb strings.Builder
		_, err := msg.WriteTo(&sb)
		body = sb.String()
		return err
	})
	n := services.NewKitchenNotifierWithSender("orders@dishdash.test", "kitchen@dishdash.test", sender)

	order := models.Order{ID: 7, CustomerName: "Ada", DishName: "Cheeseburger", Quantity: 2}
	require.NoError(t, n.PaymentConfirmed(context.Background(), order, models.Payment{Currency: "usd"}))
	n.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"kitchen@dishdash.test"}, to)
	assert.Contains(t, body, "New paid order #7")
	assert.Contains(t, body, "Cheeseburger")
}

func TestWebhookMatchesRazorpayCaptureByIntent(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")
	placed := f.place(t, user, "Margherita Pizza", "1")
	ctx := context.Background()

	// captured payments do not carry the order notes
	hooks := services.NewWebhookService(f.store, payment.NewRazorpayGateway("rzp_test", "key_secret", "hook_secret"), nil, metrics.NewNop())
	body := []byte(fmt.Sprintf(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {
			"id": "pay_1", "amount": %d, "currency": "USD",
			"order_id": %q, "notes": []
		}}}
	}`, placed.AmountMinor, placed.IntentID))

	outcome, err := hooks.Handle(ctx, body, payment.SignWebhook(body, "hook_secret"))
	require.NoError(t, err)
	assert.Equal(t, services.OutcomeRecorded, outcome)

	order, err := f.store.FindOrderByID(ctx, placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, int64(1), countPayments(t, f.store))

	var unmatched int64
	require.NoError(t, f.store.DB().Model(&models.UnmatchedPaymentEvent{}).Count(&unmatched).Error)
	assert.Zero(t, unmatched)
}

func TestWebhookConcurrentRedeliveryRecordsOnce(t *testing.T) {
	f := newWebhookFixture(t)
	user := f.user(t, "ada")
	placed := f.place(t, user, "Cheeseburger", "2")
	body, sig := paymentEvent(placed)

	// a processor retries deliveries that fail with a server error
	deliver := func() (services.WebhookOutcome, error) {
		var (
			outcome services.WebhookOutcome
			err     error
		)
		for attempt := 0; attempt < 5; attempt++ {
			outcome, err = f.hooks.Handle(context.Background(), body, sig)
			if appErr := utils.GetAppError(err); appErr == nil || appErr.Code < 500 {
				break
			}
		}
		return outcome, err
	}

	var wg sync.WaitGroup
	outcomes := make([]services.WebhookOutcome, 2)
	errs := make([]error, 2)
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = deliver()
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.ElementsMatch(t, []services.WebhookOutcome{services.OutcomeRecorded, services.OutcomeDuplicate}, outcomes)
	assert.Equal(t, int64(1), countPayments(t, f.store))

	order, err := f.store.FindOrderByID(context.Background(), placed.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
}
