package utils

// Application constants
const (
	AppName = "DishDash"

	APIVersion = "v1"

	DefaultPort = "8080"

	// JWT token expiration (24 hours)
	JWTExpiration = "24h"

	MinPasswordLength = 8
	MaxPasswordLength = 72

	MaxNameLength         = 100
	MaxInstructionsLength = 500
)

// Error messages
const (
	ErrInvalidCredentials = "Invalid username or password"
	ErrInvalidToken       = "Invalid or expired token"
	ErrUnauthorized       = "Unauthorized access"
	ErrLoginRequired      = "Please login for access"

	ErrMissingOrderFields = "Please fill in all required fields"
	ErrInvalidQuantity    = "Quantity must be a positive integer"
	ErrInvalidMenuItem    = "Invalid menu item selected"
	ErrPaymentFailed      = "An error occurred while processing your payment. Please try again."

	ErrRecordNotFound = "Record not found"
	ErrInternalServer = "Internal server error"
)

// Success messages
const (
	MsgLoginSuccess    = "Login successful"
	MsgLogoutSuccess   = "Logout successful"
	MsgRegisterSuccess = "Registration successful. Please log in."

	MsgOrderPlaced        = "Order placed. Complete the payment to confirm it."
	MsgPaymentSuccess     = "Payment successful! Your order has been confirmed."
	MsgPaymentProcessing  = "Payment received. Your order will be confirmed once the payment processor notifies us."
	MsgPaymentCancelled   = "Payment cancelled. Your order has been removed."
	MsgWebhookAcknowledge = "Success"
)
