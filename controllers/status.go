package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"fund-portal/services"
	"fund-portal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusController exposes the status classifier and the cached status lookup.
type StatusController struct {
	statuses *services.StatusDirectory
	logger   *zap.Logger
}

func NewStatusController(statuses *services.StatusDirectory, logger *zap.Logger) *StatusController {
	return &StatusController{statuses: statuses, logger: logger}
}

func optionalQuery(c *gin.Context, key string) *string {
	value, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	return &value
}

// ClassifyStatus handles GET /api/v1/statuses/classify?id=&code=&name=
func (ctl *StatusController) ClassifyStatus(c *gin.Context) {
	var statusID *int
	if raw := strings.TrimSpace(c.Query("id")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status id"})
			return
		}
		statusID = &parsed
	}
	code := optionalQuery(c, "code")
	name := optionalQuery(c, "name")

	classification := services.ClassifyStatus(statusID, code, name)
	canonical := ""
	if code != nil {
		canonical, _ = utils.CanonicalStatusCode(*code)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"kind":           classification.Kind,
		"approved":       classification.Approved,
		"style":          classification.Style,
		"canonical_code": canonical,
	})
}

// GetStatuses handles GET /api/v1/statuses
func (ctl *StatusController) GetStatuses(c *gin.Context) {
	if c.Query("refresh") == "1" {
		ctl.statuses.Clear()
	}
	statuses, err := ctl.statuses.Statuses(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, "Failed to load statuses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "statuses": statuses})
}
