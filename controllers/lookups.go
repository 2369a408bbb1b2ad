package controllers

import (
	"net/http"

	"fund-portal/middleware"
	"fund-portal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LookupController struct {
	screens *services.ScreenManager
	logger  *zap.Logger
}

func NewLookupController(screens *services.ScreenManager, logger *zap.Logger) *LookupController {
	return &LookupController{screens: screens, logger: logger}
}

// GetLookups handles GET /api/v1/lookups; ?refresh=1 drops the screen's cached copy first.
func (ctl *LookupController) GetLookups(c *gin.Context) {
	session := ctl.screens.Open(middleware.UserKey(c), middleware.ScreenID(c))
	if c.Query("refresh") == "1" {
		session.Lookups.Invalidate()
	}
	lookups, err := session.Lookups.Get(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, "Failed to load lookups", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"categories":    lookups.Categories,
		"subcategories": lookups.Subcategories,
	})
}
