package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Govind-619/DishDash/services"
	"github.com/Govind-619/DishDash/utils"
	"github.com/gin-gonic/gin"
)

// maxWebhookBody caps how much of a webhook delivery is read
const maxWebhookBody = 64 << 10

type PaymentController struct {
	orders   *services.OrderService
	webhooks *services.WebhookService
}

func NewPaymentController(orders *services.OrderService, webhooks *services.WebhookService) *PaymentController {
	return &PaymentController{orders: orders, webhooks: webhooks}
}

// PaymentSuccess is where checkout redirects after the customer paid
func (pc *PaymentController) PaymentSuccess(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	res, err := pc.orders.PaymentSuccess(c.Request.Context(), user, orderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	message := utils.MsgPaymentProcessing
	if res.Confirmed {
		message = utils.MsgPaymentSuccess
	}
	utils.Success(c, message, gin.H{
		"order":     res.Order,
		"confirmed": res.Confirmed,
	})
}

// PaymentCancel is where checkout redirects after the customer gave up. The GET
// form is kept for redirects; browsers send the Lax session cookie on cross-site
// navigations, so those are refused.
func (pc *PaymentController) PaymentCancel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if c.Request.Method == http.MethodGet && c.GetHeader("Sec-Fetch-Site") == "cross-site" {
		utils.LogWarn("Refused cross-site cancel for user %d", user.ID)
		utils.Forbidden(c, utils.ErrUnauthorized)
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := pc.orders.PaymentCancel(c.Request.Context(), user, orderID); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgPaymentCancelled, gin.H{"order_id": orderID})
}

// Webhook receives signed payment events from the processor
func (pc *PaymentController) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.LogError("Webhook payload exceeds %d bytes", maxWebhookBody)
			utils.Error(c, http.StatusRequestEntityTooLarge, "Invalid payload", nil)
			return
		}
		utils.LogError("Failed to read webhook body: %v", err)
		utils.BadRequest(c, "Invalid payload", nil)
		return
	}

	outcome, err := pc.webhooks.Handle(c.Request.Context(), body, c.GetHeader(pc.webhooks.SignatureHeader()))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgWebhookAcknowledge, gin.H{"outcome": outcome})
}
