// Package paymenttest provides an in-memory payment gateway for tests.
package paymenttest

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Govind-619/DishDash/payment"
)

const (
	SignatureHeader = "X-Test-Signature"
	Secret          = "whsec_test"
)

// Gateway records intent requests and verifies webhooks signed with Sign.
type Gateway struct {
	mu       sync.Mutex
	Requests []payment.IntentRequest
	// Err, when set, is returned by CreateIntent.
	Err  error
	next int
}

func New() *Gateway {
	return &Gateway{}
}

func (g *Gateway) Name() string { return "fake" }

func (g *Gateway) SignatureHeader() string { return SignatureHeader }

func (g *Gateway) PublishableKey() string { return "pk_test" }

func (g *Gateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if g.Err != nil {
		return nil, g.Err
	}
	g.next++
	id := fmt.Sprintf("pi_test_%d", g.next)
	return &payment.Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		AmountMinor:  req.AmountMinor,
		Currency:     req.Currency,
	}, nil
}

// LastRequest returns the most recent intent request
func (g *Gateway) LastRequest() (payment.IntentRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Requests) == 0 {
		return payment.IntentRequest{}, false
	}
	return g.Requests[len(g.Requests)-1], true
}

// Payload is the wire form of a fake webhook event
type Payload struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	IntentID    string `json:"intent_id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	OrderID     string `json:"order_id"`
}

// Sign returns the body and signature header value for p
func Sign(p Payload) ([]byte, string) {
	body, _ := json.Marshal(p)
	return body, payment.SignWebhook(body, Secret)
}

// SucceededEvent builds a signed payment_intent.succeeded delivery
func SucceededEvent(intentID string, orderID uint, amountMinor int64) ([]byte, string) {
	return Sign(Payload{
		ID:          "evt_" + intentID,
		Type:        payment.EventPaymentSucceeded,
		IntentID:    intentID,
		AmountMinor: amountMinor,
		Currency:    "usd",
		OrderID:     fmt.Sprint(orderID),
	})
}

func (g *Gateway) ParseWebhook(body []byte, signature string) (*payment.Event, error) {
	if !hmac.Equal([]byte(signature), []byte(payment.SignWebhook(body, Secret))) {
		return nil, payment.ErrInvalidSignature
	}
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidPayload, err)
	}
	return &payment.Event{
		ID:          p.ID,
		Type:        p.Type,
		IntentID:    p.IntentID,
		AmountMinor: p.AmountMinor,
		Currency:    p.Currency,
		OrderRef:    p.OrderID,
	}, nil
}
