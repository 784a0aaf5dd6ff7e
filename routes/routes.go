package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/Govind-619/DishDash/config"
	"github.com/Govind-619/DishDash/controllers"
	"github.com/Govind-619/DishDash/metrics"
	"github.com/Govind-619/DishDash/services"
	"github.com/Govind-619/DishDash/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "dishdash"

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the router dispatches to
type Dependencies struct {
	Config   *config.Config
	Auth     *services.AuthService
	Menu     *services.MenuService
	Orders   *services.OrderService
	Webhooks *services.WebhookService
	Metrics  *metrics.Metrics
	DB       Pinger
}

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())
	router.Use(deps.Metrics.Middleware())

	store := cookie.NewStore([]byte(deps.Config.SecretKey))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   deps.Config.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionName, store))

	menu := controllers.NewMenuController(deps.Menu)
	payments := controllers.NewPaymentController(deps.Orders, deps.Webhooks)

	router.GET("/", menu.Index)
	router.POST("/webhook", payments.Webhook)
	router.GET("/health", health(deps.DB))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	router.NoRoute(func(c *gin.Context) {
		utils.NotFound(c, "Route not found")
	})

	api := router.Group("/v1")
	{
		api.GET("/menu", menu.Menu)
		initUserRoutes(api, deps)
	}

	return router
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				utils.LogError("Health check failed: %v", err)
				utils.RespondError(c, utils.ServiceUnavailableError("Database unavailable", err))
				return
			}
		}
		utils.Success(c, "OK", gin.H{"version": utils.APIVersion})
	}
}
