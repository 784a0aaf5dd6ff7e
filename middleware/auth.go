package middleware

import (
	"strings"

	"github.com/Govind-619/DishDash/models"
	"github.com/Govind-619/DishDash/services"
	"github.com/Govind-619/DishDash/utils"
	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// AuthMiddleware requires a logged-in user, identified by a bearer token or the
// session cookie, and stores it in the context.
func AuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			userID uint
			ok     bool
		)

		if header := c.GetHeader("Authorization"); header != "" {
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				utils.LogError("Invalid Bearer token format")
				utils.Unauthorized(c, utils.ErrLoginRequired)
				c.Abort()
				return
			}
			id, err := auth.ParseToken(tokenString)
			if err != nil {
				utils.LogError("Invalid token: %v", err)
				utils.RespondError(c, err)
				c.Abort()
				return
			}
			userID, ok = id, true
		} else {
			userID, ok = utils.SessionUserID(c)
		}

		if !ok {
			utils.LogDebug("Unauthenticated request to %s", c.Request.URL.Path)
			utils.Unauthorized(c, utils.ErrLoginRequired)
			c.Abort()
			return
		}

		user, err := auth.Identify(c.Request.Context(), userID)
		if err != nil {
			utils.LogError("User not found: %v", err)
			utils.RespondError(c, err)
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		utils.LogDebug("User %d authenticated", user.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
