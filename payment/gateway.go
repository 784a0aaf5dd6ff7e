// Package payment talks to the external payment processor: creating payment
// intents and turning signed webhook deliveries into events.
package payment

import (
	"context"
	"errors"
)

// EventPaymentSucceeded is the event type that confirms an intent was paid.
const EventPaymentSucceeded = "payment_intent.succeeded"

var (
	// ErrInvalidPayload means the webhook body could not be parsed.
	ErrInvalidPayload = errors.New("payment: invalid webhook payload")
	// ErrInvalidSignature means the webhook signature did not verify against the shared secret.
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
	// ErrRejected marks processor errors that retrying cannot fix.
	ErrRejected = errors.New("payment: request rejected by processor")
)

// IntentRequest asks the processor to start a charge
type IntentRequest struct {
	AmountMinor    int64
	Currency       string
	OrderID        uint
	IdempotencyKey string
}

// Intent is the processor's handle on an in-progress charge
type Intent struct {
	ID           string
	ClientSecret string
	AmountMinor  int64
	Currency     string
}

// Event is a verified webhook notification normalized across processors.
// Payment fields are set only for EventPaymentSucceeded.
type Event struct {
	ID          string
	Type        string
	IntentID    string
	AmountMinor int64
	Currency    string
	OrderRef    string
}

// Gateway is the external payment service
type Gateway interface {
	Name() string
	// SignatureHeader names the HTTP header carrying the webhook signature.
	SignatureHeader() string
	// PublishableKey is handed to clients so they can confirm intents.
	PublishableKey() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	// ParseWebhook verifies the signature before reading any content.
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
