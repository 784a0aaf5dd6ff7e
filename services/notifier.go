package services

import (
	"context"
	"fmt"
	"html"
	"sync"

	"github.com/Govind-619/DishDash/config"
	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/utils"
	"gopkg.in/gomail.v2"
)

// PaymentNotifier is told about every newly confirmed payment
type PaymentNotifier interface {
	PaymentConfirmed(ctx context.Context, order models.Order, p models.Payment) error
}

// NopNotifier drops notifications
type NopNotifier struct{}

func (NopNotifier) PaymentConfirmed(context.Context, models.Order, models.Payment) error { return nil }

// KitchenNotifier emails the kitchen when an order is paid. Mail is sent in the
// background so a slow SMTP server never delays the webhook acknowledgement.
type KitchenNotifier struct {
	from   string
	to     string
	sender gomail.Sender
	dialer *gomail.Dialer
	wg     sync.WaitGroup
}

// NewKitchenNotifier returns a notifier for cfg, or a NopNotifier when SMTP is not configured
func NewKitchenNotifier(cfg config.SMTPConfig) PaymentNotifier {
	if !cfg.Enabled() {
		return NopNotifier{}
	}
	return &KitchenNotifier{
		from:   cfg.From,
		to:     cfg.KitchenEmail,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// NewKitchenNotifierWithSender sends through s instead of dialing SMTP
func NewKitchenNotifierWithSender(from, to string, s gomail.Sender) *KitchenNotifier {
	return &KitchenNotifier{from: from, to: to, sender: s}
}

func (n *KitchenNotifier) PaymentConfirmed(_ context.Context, order models.Order, p models.Payment) error {
	msg := n.buildMessage(order, p)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.send(msg); err != nil {
			utils.LogError("Failed to send kitchen email for order %d: %v", order.ID, err)
			return
		}
		utils.LogInfo("Kitchen notified about order %d", order.ID)
	}()
	return nil
}

// Wait blocks until queued emails have been handed to the server
func (n *KitchenNotifier) Wait() {
	n.wg.Wait()
}

func (n *KitchenNotifier) send(msg *gomail.Message) error {
	if n.sender != nil {
		return gomail.Send(n.sender, msg)
	}
	return n.dialer.DialAndSend(msg)
}

func (n *KitchenNotifier) buildMessage(order models.Order, p models.Payment) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", fmt.Sprintf("New paid order #%d: %d x %s", order.ID, order.Quantity, order.DishName))

	instructions := order.SpecialInstructions
	if instructions == "" {
		instructions = "None"
	}
	body := fmt.Sprintf(`
		<h2>Order #%d is paid</h2>
		<p><strong>Customer:</strong> %s</p>
		<p><strong>Dish:</strong> %s</p>
		<p><strong>Quantity:</strong> %d</p>
		<p><strong>Special instructions:</strong> %s</p>
		<p><strong>Paid:</strong> %s %s</p>
	`, order.ID,
		html.EscapeString(order.CustomerName),
		html.EscapeString(order.DishName),
		order.Quantity,
		html.EscapeString(instructions),
		p.Amount.StringFixed(2), p.Currency)
	m.SetBody("text/html", body)
	return m
}
