package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"fund-portal/middleware"
	"fund-portal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MergedDocumentController serves and revokes published merged PDFs and tears down screens.
type MergedDocumentController struct {
	screens *services.ScreenManager
	logger  *zap.Logger
}

func NewMergedDocumentController(screens *services.ScreenManager, logger *zap.Logger) *MergedDocumentController {
	return &MergedDocumentController{screens: screens, logger: logger}
}

func mergedTokenParam(c *gin.Context) (string, bool) {
	token := strings.TrimSpace(c.Param("token"))
	if _, err := uuid.Parse(token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid merged document token"})
		return "", false
	}
	return token, true
}

// GetMergedDocument handles GET /api/v1/merged/:token
func (ctl *MergedDocumentController) GetMergedDocument(c *gin.Context) {
	token, ok := mergedTokenParam(c)
	if !ok {
		return
	}

	doc, err := ctl.screens.GetMerged(c.Request.Context(), middleware.UserKey(c), token)
	if err != nil {
		respondError(c, ctl.logger, "Failed to load merged document", err)
		return
	}

	disposition := "inline"
	if c.Query("download") == "1" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q; filename*=UTF-8''%s",
		disposition, doc.Filename, url.PathEscape(doc.Filename)))
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, "application/pdf", doc.PDF)
}

// RevokeMergedDocument handles DELETE /api/v1/merged/:token
func (ctl *MergedDocumentController) RevokeMergedDocument(c *gin.Context) {
	token, ok := mergedTokenParam(c)
	if !ok {
		return
	}
	if err := ctl.screens.RevokeMerged(c.Request.Context(), middleware.UserKey(c), token); err != nil {
		respondError(c, ctl.logger, "Failed to revoke merged document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CloseScreen handles DELETE /api/v1/screens/:screen_id. Only the caller's own screen is closed.
func (ctl *MergedDocumentController) CloseScreen(c *gin.Context) {
	screenID := strings.TrimSpace(c.Param("screen_id"))
	if screenID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid screen id"})
		return
	}
	closed := ctl.screens.Close(c.Request.Context(), middleware.UserKey(c), screenID)
	c.JSON(http.StatusOK, gin.H{"success": true, "closed": closed})
}
