package routes

import (
	"github.com/Govind-619/DishDash/controllers"
	"github.com/Govind-619/DishDash/middleware"
	"github.com/gin-gonic/gin"
)

// initUserRoutes registers account routes and the order workflow
func initUserRoutes(router *gin.RouterGroup, deps Dependencies) {
	auth := controllers.NewAuthController(deps.Auth)
	orders := controllers.NewOrderController(deps.Orders, deps.Menu)
	payments := controllers.NewPaymentController(deps.Orders, deps.Webhooks)

	// Public routes
	router.POST("/register", auth.Register)
	router.POST("/login", auth.Login)
	router.POST("/logout", auth.Logout)

	user := router.Group("/user")
	user.Use(middleware.AuthMiddleware(deps.Auth))
	{
		user.GET("/order", orders.OrderForm)
		user.POST("/order", orders.PlaceOrder)

		user.GET("/payment/success/:id", payments.PaymentSuccess)
		user.GET("/payment/cancel/:id", payments.PaymentCancel)
		user.POST("/payment/cancel/:id", payments.PaymentCancel)

		user.GET("/orders", orders.OrderHistory)
		user.GET("/orders/export", orders.ExportOrders)
		user.GET("/orders/:id/receipt", orders.DownloadReceipt)
	}
}
