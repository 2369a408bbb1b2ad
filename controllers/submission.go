package controllers

import (
	"net/http"
	"strconv"

	"fund-portal/middleware"
	"fund-portal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmissionController serves the submission detail screens.
type SubmissionController struct {
	submissions *services.SubmissionService
	screens     *services.ScreenManager
	logger      *zap.Logger
}

func NewSubmissionController(submissions *services.SubmissionService, screens *services.ScreenManager, logger *zap.Logger) *SubmissionController {
	return &SubmissionController{submissions: submissions, screens: screens, logger: logger}
}

func submissionIDParam(c *gin.Context) (int, bool) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission id"})
		return 0, false
	}
	return submissionID, true
}

// GetSubmissionView handles GET /api/v1/submissions/:id/view
func (ctl *SubmissionController) GetSubmissionView(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	session := ctl.screens.Open(middleware.UserKey(c), middleware.ScreenID(c))
	view, err := ctl.submissions.View(c.Request.Context(), session, submissionID, services.ViewOptions{
		RedactApproved: middleware.RoleID(c) == middleware.RoleDeptHead,
	})
	if err != nil {
		respondError(c, ctl.logger, "Failed to load submission", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": view,
	})
}

// GetSubmissionAttachments handles GET /api/v1/submissions/:id/attachments
func (ctl *SubmissionController) GetSubmissionAttachments(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	includeHidden := c.Query("all") == "1" || c.Query("all") == "true"
	entries, err := ctl.submissions.Attachments(c.Request.Context(), submissionID, includeHidden)
	if err != nil {
		respondError(c, ctl.logger, "Failed to load submission documents", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"attachments": entries,
		"total":       len(entries),
	})
}

// MergeSubmissionDocuments handles POST /api/v1/submissions/:id/merged-document
func (ctl *SubmissionController) MergeSubmissionDocuments(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	screenID := middleware.ScreenID(c)
	ctl.logger.Info("merge requested",
		zap.Int("submission_id", submissionID),
		zap.String("screen_id", screenID),
		zap.Int("user_id", c.GetInt("userID")),
	)

	session := ctl.screens.Open(middleware.UserKey(c), screenID)
	published, err := ctl.submissions.Merge(c.Request.Context(), session, submissionID)
	if err != nil {
		respondError(c, ctl.logger, "Failed to merge submission documents", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"url":      mergedURL(published.Token),
		"token":    published.Token,
		"filename": published.Filename,
		"pages":    published.Pages,
		"merged":   published.Merged,
		"skipped":  published.Skipped,
	})
}

func mergedURL(token string) string {
	return "/api/v1/merged/" + token
}
