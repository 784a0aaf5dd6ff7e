package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Govind-619/DishDash/config"
	"github.com/Govind-619/DishDash/metrics"
	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/payment"
	"github.com/Govind-619/DishDash/repository"
	"github.com/Govind-619/DishDash/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is the only currency orders are charged in
const Currency = "usd"

var hundred = decimal.NewFromInt(100)

// OrderInput is the submitted order form. Quantity stays a string so that
// non-numeric input is reported as a validation error.
type OrderInput struct {
	CustomerName        string
	DishName            string
	Quantity            string
	SpecialInstructions string
	IdempotencyKey      string
}

// PlacedOrder is what the client needs to run the payment step
type PlacedOrder struct {
	Order          models.Order
	Total          decimal.Decimal
	AmountMinor    int64
	Currency       string
	IntentID       string
	ClientSecret   string
	PublishableKey string
}

// PaymentResolution describes an order after the client returned from checkout
type PaymentResolution struct {
	Order     models.Order
	Confirmed bool
}

// OrderService runs the order-to-payment workflow
type OrderService struct {
	store        repository.Store
	gateway      payment.Gateway
	metrics      *metrics.Metrics
	redirectMode string
	now          func() time.Time
}

func NewOrderService(store repository.Store, gateway payment.Gateway, m *metrics.Metrics, redirectMode string) *OrderService {
	if redirectMode == "" {
		redirectMode = config.RedirectModeWebhook
	}
	return &OrderService{
		store:        store,
		gateway:      gateway,
		metrics:      m,
		redirectMode: redirectMode,
		now:          time.Now,
	}
}

// OrderTotal prices quantity units of item
func OrderTotal(item *models.MenuItem, quantity int) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

// ToMinorUnits converts an amount to cents, rounding half away from zero
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts cents back to an amount
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

func (s *OrderService) reject(reason, message string) error {
	s.metrics.OrdersRejected.WithLabelValues(reason).Inc()
	return utils.UnprocessableError(message, nil)
}

// CreateOrder validates the form, persists a Pending order and creates its payment
// intent. When intent creation fails the Pending order is deleted again.
func (s *OrderService) CreateOrder(ctx context.Context, user *models.User, in OrderInput) (*PlacedOrder, error) {
	customerName := utils.SanitizeString(in.CustomerName)
	dishName := strings.TrimSpace(in.DishName)
	quantityText := strings.TrimSpace(in.Quantity)
	instructions := utils.SanitizeString(in.SpecialInstructions)

	if customerName == "" || dishName == "" || quantityText == "" {
		return nil, s.reject("missing_fields", utils.ErrMissingOrderFields)
	}
	if err := utils.ValidateStringLength(customerName, 1, utils.MaxNameLength); err != nil {
		return nil, s.reject("invalid_name", "Customer name "+err.Error())
	}
	if err := utils.ValidateStringLength(instructions, 0, utils.MaxInstructionsLength); err != nil {
		return nil, s.reject("invalid_instructions", "Special instructions "+err.Error())
	}

	quantity, err := strconv.Atoi(quantityText)
	if err != nil || quantity < 1 {
		return nil, s.reject("invalid_quantity", utils.ErrInvalidQuantity)
	}

	item, err := s.store.FindMenuItemByName(ctx, dishName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.reject("unknown_dish", utils.ErrInvalidMenuItem)
		}
		return nil, utils.InternalError("Failed to look up menu item", err)
	}

	var idempotencyKey *string
	if key := strings.TrimSpace(in.IdempotencyKey); key != "" {
		if existing, err := s.store.FindOrderByIdempotencyKey(ctx, user.ID, key); err == nil {
			return nil, duplicateSubmission(existing.ID, nil)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, utils.InternalError("Failed to check previous submissions", err)
		}
		idempotencyKey = &key
	}

	total := OrderTotal(item, quantity)
	amountMinor := ToMinorUnits(total)

	order := models.Order{
		UserID:              user.ID,
		CustomerName:        customerName,
		DishName:            item.Name,
		Quantity:            quantity,
		SpecialInstructions: instructions,
		TotalAmount:         total,
		Status:              models.OrderStatusPending,
		IdempotencyKey:      idempotencyKey,
		OrderDate:           s.now().UTC(),
	}

	if err := s.store.CreateOrder(ctx, &order); err != nil {
		if errors.Is(err, repository.ErrDuplicate) && idempotencyKey != nil {
			return nil, duplicateSubmission(0, err)
		}
		return nil, utils.InternalError("Failed to place order", err)
	}

	// no transaction may be open across the processor call
	intent, err := s.gateway.CreateIntent(ctx, payment.IntentRequest{
		AmountMinor:    amountMinor,
		Currency:       Currency,
		OrderID:        order.ID,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		s.metrics.IntentFailures.Inc()
		s.discardOrder(order.ID, user.ID)
		utils.LogError("Payment intent creation failed for user %d, order %d removed: %v", user.ID, order.ID, err)
		return nil, utils.BadGatewayError(utils.ErrPaymentFailed, err)
	}

	if err := s.store.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		s.discardOrder(order.ID, user.ID)
		return nil, utils.InternalError("Failed to place order", err)
	}
	order.PaymentIntentID = &intent.ID

	s.metrics.OrdersCreated.Inc()
	utils.LogInfo("New order placed: Order ID %d, User ID %d, total %s %s", order.ID, user.ID, total.StringFixed(2), Currency)

	return &PlacedOrder{
		Order:          order,
		Total:          total,
		AmountMinor:    amountMinor,
		Currency:       Currency,
		IntentID:       intent.ID,
		ClientSecret:   intent.ClientSecret,
		PublishableKey: s.gateway.PublishableKey(),
	}, nil
}

// discardOrder is the compensating delete for an order whose intent could not be
// created. It runs on a fresh context so a cancelled request still cleans up.
func (s *OrderService) discardOrder(orderID, userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.store.DeletePendingOrder(ctx, orderID, userID); err != nil {
		utils.LogError("Failed to remove order %d after intent failure: %v", orderID, err)
	}
}

func duplicateSubmission(orderID uint, err error) error {
	msg := "This order was already submitted"
	if orderID != 0 {
		msg += " as order " + strconv.FormatUint(uint64(orderID), 10)
	}
	return utils.ConflictError(msg, err)
}

// ownedOrder loads the order and checks that user owns it
func (s *OrderService) ownedOrder(ctx context.Context, user *models.User, orderID uint, action string) (*models.Order, error) {
	order, err := s.store.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NotFoundError("Order not found", err)
		}
		return nil, utils.InternalError("Failed to load order", err)
	}
	if order.UserID != user.ID {
		utils.LogWarn("Unauthorized access attempt to %s order %d by user %d", action, orderID, user.ID)
		return nil, utils.ForbiddenError(utils.ErrUnauthorized, nil)
	}
	return order, nil
}

// PaymentSuccess handles the client's return from a successful checkout. In webhook
// mode it only reports whether the processor already confirmed the payment; in
// trust mode it marks the order Paid itself.
func (s *OrderService) PaymentSuccess(ctx context.Context, user *models.User, orderID uint) (*PaymentResolution, error) {
	order, err := s.ownedOrder(ctx, user, orderID, "confirm")
	if err != nil {
		return nil, err
	}

	if s.redirectMode == config.RedirectModeTrust && !order.IsPaid() {
		if _, err := s.store.MarkPaid(ctx, order.ID); err != nil {
			return nil, utils.InternalError("Failed to update order", err)
		}
		order.Status = models.OrderStatusPaid
		utils.LogInfo("Payment successful for order %d (client redirect)", order.ID)
	}

	if !order.IsPaid() {
		utils.LogInfo("Order %d awaiting payment confirmation", order.ID)
	}
	return &PaymentResolution{Order: *order, Confirmed: order.IsPaid()}, nil
}

// PaymentCancel removes a Pending order owned by user
func (s *OrderService) PaymentCancel(ctx context.Context, user *models.User, orderID uint) error {
	order, err := s.ownedOrder(ctx, user, orderID, "cancel")
	if err != nil {
		return err
	}
	if order.IsPaid() {
		return utils.ConflictError("Order has already been paid and cannot be cancelled", nil)
	}

	deleted, err := s.store.DeletePendingOrder(ctx, order.ID, user.ID)
	if err != nil {
		return utils.InternalError("Failed to cancel order", err)
	}
	if !deleted {
		// the webhook confirmed it between the read and the delete
		return utils.ConflictError("Order has already been paid and cannot be cancelled", nil)
	}

	s.metrics.OrdersCancelled.Inc()
	utils.LogInfo("Payment cancelled for order %d", order.ID)
	return nil
}

// History lists the user's orders, newest first
func (s *OrderService) History(ctx context.Context, user *models.User) ([]models.Order, error) {
	orders, err := s.store.ListOrdersByUser(ctx, user.ID)
	if err != nil {
		return nil, utils.InternalError("Failed to load order history", err)
	}
	return orders, nil
}

// HistoryPage lists one page of the user's orders, newest first, with the total count
func (s *OrderService) HistoryPage(ctx context.Context, user *models.User, offset, limit int) ([]models.Order, int64, error) {
	orders, total, err := s.store.ListOrdersByUserPage(ctx, user.ID, offset, limit)
	if err != nil {
		return nil, 0, utils.InternalError("Failed to load order history", err)
	}
	return orders, total, nil
}

// OrderWithPayment returns an owned order and its payment, if one was recorded
func (s *OrderService) OrderWithPayment(ctx context.Context, user *models.User, orderID uint) (*models.Order, *models.Payment, error) {
	order, err := s.ownedOrder(ctx, user, orderID, "view")
	if err != nil {
		return nil, nil, err
	}
	p, err := s.store.FindPaymentByOrderID(ctx, order.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return order, nil, nil
		}
		return nil, nil, utils.InternalError("Failed to load payment", err)
	}
	return order, p, nil
}
