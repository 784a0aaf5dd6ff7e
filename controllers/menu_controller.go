package controllers

import (
	"github.com/Govind-619/DishDash/services"
	"github.com/Govind-619/DishDash/utils"
	"github.com/gin-gonic/gin"
)

type MenuController struct {
	menu *services.MenuService
}

func NewMenuController(menu *services.MenuService) *MenuController {
	return &MenuController{menu: menu}
}

// Index lists the menu on the landing page
func (mc *MenuController) Index(c *gin.Context) {
	items, err := mc.menu.Index(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Welcome to "+utils.AppName, gin.H{"menu_items": items})
}

// Menu lists menu items, optionally filtered by ?category=
func (mc *MenuController) Menu(c *gin.Context) {
	category := c.Query("category")
	items, err := mc.menu.Menu(c.Request.Context(), category)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Menu retrieved successfully", gin.H{
		"menu_items": items,
		"category":   category,
	})
}
