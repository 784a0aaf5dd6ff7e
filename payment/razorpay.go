package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
)

// razorpayCaptured is translated to EventPaymentSucceeded
const razorpayCaptured = "payment.captured"

// RazorpayGateway uses Razorpay orders as payment intents. The Razorpay order id
// doubles as the intent id and as the client token handed to checkout.
type RazorpayGateway struct {
	client        *razorpay.Client
	keyID         string
	webhookSecret string
}

func NewRazorpayGateway(keyID, keySecret, webhookSecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client:        razorpay.NewClient(keyID, keySecret),
		keyID:         keyID,
		webhookSecret: webhookSecret,
	}
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

func (g *RazorpayGateway) SignatureHeader() string { return "X-Razorpay-Signature" }

func (g *RazorpayGateway) PublishableKey() string { return g.keyID }

func (g *RazorpayGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	orderRef := strconv.FormatUint(uint64(req.OrderID), 10)
	data := map[string]interface{}{
		"amount":          req.AmountMinor,
		"currency":        strings.ToUpper(req.Currency),
		"receipt":         "order_rcptid_" + orderRef,
		"payment_capture": 1,
		"notes":           map[string]interface{}{"order_id": orderRef},
	}
	var headers map[string]string
	if req.IdempotencyKey != "" {
		headers = map[string]string{"X-Idempotency-Key": req.IdempotencyKey}
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	// the razorpay client takes no context, so the call is abandoned on cancellation
	done := make(chan result, 1)
	go func() {
		body, err := g.client.Order.Create(data, headers)
		done <- result{body, err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("razorpay: create order: %w", ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("razorpay: create order: %w", res.err)
	}

	id, _ := res.body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: razorpay order response has no id", ErrRejected)
	}
	return &Intent{
		ID:           id,
		ClientSecret: id,
		AmountMinor:  req.AmountMinor,
		Currency:     strings.ToLower(req.Currency),
	}, nil
}

type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID       string          `json:"id"`
				Amount   int64           `json:"amount"`
				Currency string          `json:"currency"`
				OrderID  string          `json:"order_id"`
				Notes    json.RawMessage `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// SignWebhook computes the X-Razorpay-Signature value for body
func SignWebhook(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func (g *RazorpayGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if signature == "" || g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: missing signature", ErrInvalidSignature)
	}
	expected := SignWebhook(payload, g.webhookSecret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrInvalidSignature
	}

	var body razorpayWebhook
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	entity := body.Payload.Payment.Entity
	if body.Event != razorpayCaptured {
		return &Event{ID: entity.ID, Type: body.Event}, nil
	}

	// notes is an empty array when no notes were attached
	var notes map[string]interface{}
	_ = json.Unmarshal(entity.Notes, &notes)
	orderRef := ""
	if v, ok := notes["order_id"]; ok {
		orderRef = fmt.Sprint(v)
	}

	return &Event{
		ID:          entity.ID,
		Type:        EventPaymentSucceeded,
		IntentID:    entity.OrderID,
		AmountMinor: entity.Amount,
		Currency:    strings.ToLower(entity.Currency),
		OrderRef:    orderRef,
	}, nil
}
