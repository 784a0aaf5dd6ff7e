package controllers

import (
	"github.com/Govind-619/DishDash/services"
	"github.com/Govind-619/DishDash/utils"
	"github.com/gin-gonic/gin"
)

// CredentialsRequest is the register and login body, as JSON or form fields
type CredentialsRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// Register creates an account
func (ac *AuthController) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.LogError("Registration failed - Invalid request format: %v", err)
		utils.BadRequest(c, "Username and password are required", err.Error())
		return
	}

	user, err := ac.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, utils.MsgRegisterSuccess, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// Login verifies credentials, starts a session and returns a bearer token
func (ac *AuthController) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.LogError("Login attempt failed - Invalid request format: %v", err)
		utils.BadRequest(c, utils.ErrInvalidCredentials, err.Error())
		return
	}

	user, err := ac.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	token, err := ac.auth.IssueToken(user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := utils.SetSessionUser(c, user.ID); err != nil {
		utils.LogError("Failed to start session for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to start session", nil)
		return
	}

	utils.Success(c, utils.MsgLoginSuccess, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// Logout ends the session
func (ac *AuthController) Logout(c *gin.Context) {
	if err := utils.ClearSession(c); err != nil {
		utils.LogError("Logout failed: %v", err)
		utils.InternalServerError(c, "Failed to logout", nil)
		return
	}
	utils.LogInfo("User logged out")
	utils.Success(c, utils.MsgLogoutSuccess, nil)
}
