package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Govind-619/DishDash/middleware"
	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/services"
	"github.com/Govind-619/DishDash/utils"
	"github.com/gin-gonic/gin"
)

// IdempotencyHeader lets clients retry an order submission safely
const IdempotencyHeader = "Idempotency-Key"

// OrderRequest is the order form. Quantity is kept as text so that a
// non-numeric value gets the same message as a non-positive one.
type OrderRequest struct {
	CustomerName        string `json:"customer_name" form:"customer_name"`
	DishName            string `json:"dish_name" form:"dish_name"`
	Quantity            string `json:"quantity" form:"quantity"`
	SpecialInstructions string `json:"special_instructions" form:"special_instructions"`
}

type OrderController struct {
	orders *services.OrderService
	menu   *services.MenuService
}

func NewOrderController(orders *services.OrderService, menu *services.MenuService) *OrderController {
	return &OrderController{orders: orders, menu: menu}
}

func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.LogError("No user found in context for %s", c.Request.URL.Path)
		utils.Unauthorized(c, utils.ErrLoginRequired)
	}
	return user, ok
}

func orderIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.LogError("Invalid order ID format: %s", c.Param("id"))
		utils.BadRequest(c, "Invalid order ID", nil)
		return 0, false
	}
	return uint(id), true
}

// OrderForm returns the dishes that can be ordered
func (oc *OrderController) OrderForm(c *gin.Context) {
	items, err := oc.menu.Items(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Order form", gin.H{"menu_items": items})
}

// PlaceOrder validates the form, stores a Pending order and returns what the
// client needs to confirm the payment.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req OrderRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.LogError("Order submission failed - Invalid request format: %v", err)
		utils.BadRequest(c, "Invalid order form", err.Error())
		return
	}

	placed, err := oc.orders.CreateOrder(c.Request.Context(), user, services.OrderInput{
		CustomerName:        req.CustomerName,
		DishName:            req.DishName,
		Quantity:            req.Quantity,
		SpecialInstructions: req.SpecialInstructions,
		IdempotencyKey:      c.GetHeader(IdempotencyHeader),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, utils.MsgOrderPlaced, gin.H{
		"order":             placed.Order,
		"total":             placed.Total.StringFixed(2),
		"amount":            placed.AmountMinor,
		"currency":          placed.Currency,
		"payment_intent_id": placed.IntentID,
		"client_secret":     placed.ClientSecret,
		"publishable_key":   placed.PublishableKey,
		"success_url":       fmt.Sprintf("/v1/user/payment/success/%d", placed.Order.ID),
		"cancel_url":        fmt.Sprintf("/v1/user/payment/cancel/%d", placed.Order.ID),
	})
}

// OrderHistory lists the user's orders, newest first. ?page= and ?limit= return one page.
func (oc *OrderController) OrderHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if page, ok := utils.ParsePagination(c); ok {
		orders, total, err := oc.orders.HistoryPage(c.Request.Context(), user, page.Offset, page.Limit)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		page.SetTotal(total)
		utils.Success(c, "Order history retrieved successfully", gin.H{
			"orders":     orders,
			"count":      len(orders),
			"pagination": page,
		})
		return
	}

	orders, err := oc.orders.History(c.Request.Context(), user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Order history retrieved successfully", gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// ExportOrders downloads the user's order history as a spreadsheet
func (oc *OrderController) ExportOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := oc.orders.History(c.Request.Context(), user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.ExportOrders(orders, &buf); err != nil {
		utils.LogError("Failed to export orders for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to export orders", nil)
		return
	}

	filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	utils.LogInfo("Exported %d orders for user %d", len(orders), user.ID)
}

// DownloadReceipt returns a PDF receipt for one of the user's orders
func (oc *OrderController) DownloadReceipt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, p, err := oc.orders.OrderWithPayment(c.Request.Context(), user, orderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	pdf, err := services.RenderReceipt(order, p)
	if err != nil {
		utils.LogError("Failed to render receipt for order %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to generate receipt", nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt_%d.pdf", order.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
