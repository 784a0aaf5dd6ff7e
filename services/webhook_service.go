package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/Govind-619/DishDash/metrics"
	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/payment"
	"github.com/Govind-619/DishDash/repository"
	"github.com/Govind-619/DishDash/utils"
)

// WebhookOutcome says what a delivery did
type WebhookOutcome string

const (
	OutcomeRecorded  WebhookOutcome = "recorded"
	OutcomeDuplicate WebhookOutcome = "duplicate"
	OutcomeIgnored   WebhookOutcome = "ignored"
	OutcomeUnmatched WebhookOutcome = "unmatched"
	OutcomeRejected  WebhookOutcome = "rejected"
)

// WebhookService applies verified payment confirmations to the ledger. It is the
// authority for marking orders Paid.
type WebhookService struct {
	store    repository.Store
	gateway  payment.Gateway
	notifier PaymentNotifier
	metrics  *metrics.Metrics
}

func NewWebhookService(store repository.Store, gateway payment.Gateway, notifier PaymentNotifier, m *metrics.Metrics) *WebhookService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &WebhookService{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		metrics:  m,
	}
}

// SignatureHeader names the header the processor signs deliveries with
func (s *WebhookService) SignatureHeader() string {
	return s.gateway.SignatureHeader()
}

// Handle verifies and applies one delivery. Invalid payloads or signatures return a
// 400 AppError and change nothing. Every verified delivery is acknowledged, including
// ones whose order cannot be found.
func (s *WebhookService) Handle(ctx context.Context, body []byte, signature string) (WebhookOutcome, error) {
	event, err := s.gateway.ParseWebhook(body, signature)
	if err != nil {
		s.metrics.WebhookEvents.WithLabelValues(string(OutcomeRejected)).Inc()
		if errors.Is(err, payment.ErrInvalidSignature) {
			utils.LogError("Invalid signature on %s webhook: %v", s.gateway.Name(), err)
			return OutcomeRejected, utils.BadRequestError("Invalid signature", err)
		}
		utils.LogError("Invalid payload on %s webhook: %v", s.gateway.Name(), err)
		return OutcomeRejected, utils.BadRequestError("Invalid payload", err)
	}

	if event.Type != payment.EventPaymentSucceeded {
		utils.LogDebug("Ignoring webhook event %s of type %s", event.ID, event.Type)
		s.metrics.WebhookEvents.WithLabelValues(string(OutcomeIgnored)).Inc()
		return OutcomeIgnored, nil
	}

	outcome, order, recorded, err := s.recordSucceeded(ctx, event)
	if err != nil {
		return outcome, err
	}
	s.metrics.WebhookEvents.WithLabelValues(string(outcome)).Inc()

	if outcome == OutcomeRecorded {
		s.metrics.PaymentsAmount.Add(float64(event.AmountMinor))
		if err := s.notifier.PaymentConfirmed(ctx, *order, *recorded); err != nil {
			utils.LogError("Failed to notify kitchen about order %d: %v", order.ID, err)
		}
	}
	return outcome, nil
}

func (s *WebhookService) recordSucceeded(ctx context.Context, event *payment.Event) (WebhookOutcome, *models.Order, *models.Payment, error) {
	if event.IntentID == "" {
		utils.LogError("Webhook event %s carries no payment intent id", event.ID)
		return OutcomeRejected, nil, nil, utils.BadRequestError("Invalid payload", nil)
	}

	var (
		outcome WebhookOutcome
		order   *models.Order
		record  *models.Payment
	)
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		var err error
		order, err = s.matchOrder(ctx, tx, event)
		if errors.Is(err, repository.ErrNotFound) {
			outcome = OutcomeUnmatched
			return tx.RecordUnmatchedEvent(ctx, &models.UnmatchedPaymentEvent{
				PaymentIntentID: event.IntentID,
				OrderRef:        event.OrderRef,
				EventType:       event.Type,
				AmountMinor:     event.AmountMinor,
				Currency:        strings.ToLower(event.Currency),
				Reason:          "order not found",
			})
		}
		if err != nil {
			return err
		}

		record = &models.Payment{
			OrderID:         order.ID,
			Amount:          FromMinorUnits(event.AmountMinor),
			Currency:        strings.ToLower(event.Currency),
			Status:          models.PaymentStatusSucceeded,
			PaymentIntentID: event.IntentID,
		}
		created, err := tx.CreatePayment(ctx, record)
		if err != nil {
			return err
		}
		if !created {
			outcome = OutcomeDuplicate
			return nil
		}

		if _, err := tx.MarkPaid(ctx, order.ID); err != nil {
			return err
		}
		order.Status = models.OrderStatusPaid
		outcome = OutcomeRecorded
		return nil
	})
	if err != nil {
		utils.LogError("Failed to apply payment %s: %v", event.IntentID, err)
		return OutcomeRejected, nil, nil, utils.InternalError("Failed to record payment", err)
	}

	switch outcome {
	case OutcomeUnmatched:
		utils.LogWarn("Payment %s references unknown order %q, queued for reconciliation", event.IntentID, event.OrderRef)
	case OutcomeDuplicate:
		utils.LogInfo("Payment %s already recorded, ignoring redelivery", event.IntentID)
	case OutcomeRecorded:
		s.checkConsistency(order, event)
		utils.LogInfo("Payment recorded for order %d", order.ID)
	}
	return outcome, order, record, nil
}

// matchOrder finds the order by the reference the processor echoed back, falling
// back to the intent id stored at creation. Razorpay does not copy order notes onto
// the captured payment, so its deliveries usually carry no reference.
func (s *WebhookService) matchOrder(ctx context.Context, tx repository.Store, event *payment.Event) (*models.Order, error) {
	if orderID, err := strconv.ParseUint(event.OrderRef, 10, 64); err == nil && orderID > 0 {
		order, err := tx.FindOrderByID(ctx, uint(orderID))
		if !errors.Is(err, repository.ErrNotFound) {
			return order, err
		}
	}
	return tx.FindOrderByPaymentIntentID(ctx, event.IntentID)
}

// checkConsistency logs confirmations that disagree with what the order expected
func (s *WebhookService) checkConsistency(order *models.Order, event *payment.Event) {
	if expected := ToMinorUnits(order.TotalAmount); expected != event.AmountMinor {
		utils.LogWarn("Payment %s for order %d is %d minor units, expected %d", event.IntentID, order.ID, event.AmountMinor, expected)
	}
	if order.PaymentIntentID != nil && *order.PaymentIntentID != event.IntentID {
		utils.LogWarn("Payment %s does not match intent %s stored on order %d", event.IntentID, *order.PaymentIntentID, order.ID)
	}
}
