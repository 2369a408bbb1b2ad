package controllers

import (
	"net/http"

	"fund-portal/middleware"
	"fund-portal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListController serves the applications, received-funds and dept-head queue screens.
type ListController struct {
	lists   *services.ListService
	screens *services.ScreenManager
	logger  *zap.Logger
}

func NewListController(lists *services.ListService, screens *services.ScreenManager, logger *zap.Logger) *ListController {
	return &ListController{lists: lists, screens: screens, logger: logger}
}

func (ctl *ListController) serve(c *gin.Context, kind services.ListKind) {
	var filter services.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid list filter"})
		return
	}

	session := ctl.screens.Open(middleware.UserKey(c), middleware.ScreenID(c))
	redact := middleware.RoleID(c) == middleware.RoleDeptHead
	page, err := ctl.lists.Load(c.Request.Context(), session, kind, filter, redact)
	if err != nil {
		respondError(c, ctl.logger, "Failed to fetch submissions", err)
		return
	}

	response := gin.H{
		"success":     true,
		"submissions": page.Items,
		"pagination":  page.Pagination,
	}
	if page.Status != nil {
		response["status"] = page.Status
	}
	c.JSON(http.StatusOK, response)
}

// GetApplications handles GET /api/v1/applications
func (ctl *ListController) GetApplications(c *gin.Context) {
	ctl.serve(c, services.ListApplications)
}

// GetReceivedFunds handles GET /api/v1/received-funds
func (ctl *ListController) GetReceivedFunds(c *gin.Context) {
	ctl.serve(c, services.ListReceivedFunds)
}

// GetDeptHeadReviewQueue handles GET /api/v1/dept-head/review-queue
func (ctl *ListController) GetDeptHeadReviewQueue(c *gin.Context) {
	ctl.serve(c, services.ListDeptHeadQueue)
}
