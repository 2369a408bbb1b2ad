package routes

import (
	"net/http"

	"fund-portal/controllers"
	"fund-portal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers groups the controllers the route table binds.
type Handlers struct {
	Submissions *controllers.SubmissionController
	Merged      *controllers.MergedDocumentController
	Lists       *controllers.ListController
	Statuses    *controllers.StatusController
	Lookups     *controllers.LookupController
}

func SetupRoutes(router *gin.Engine, h Handlers, jwtSecret string) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "ok",
				"message": "Fund portal gateway is running",
			})
		})

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			submissions := protected.Group("/submissions/:id")
			{
				submissions.GET("/view", h.Submissions.GetSubmissionView)
				submissions.GET("/attachments", h.Submissions.GetSubmissionAttachments)
				submissions.POST("/merged-document", h.Submissions.MergeSubmissionDocuments)
			}

			merged := protected.Group("/merged")
			{
				merged.GET("/:token", h.Merged.GetMergedDocument)
				merged.DELETE("/:token", h.Merged.RevokeMergedDocument)
			}
			protected.DELETE("/screens/:screen_id", h.Merged.CloseScreen)

			// List screens
			protected.GET("/applications", h.Lists.GetApplications)
			protected.GET("/received-funds", h.Lists.GetReceivedFunds)
			protected.GET("/dept-head/review-queue",
				middleware.RequireRole(middleware.RoleDeptHead, middleware.RoleAdmin),
				h.Lists.GetDeptHeadReviewQueue)

			protected.GET("/statuses", h.Statuses.GetStatuses)
			protected.GET("/statuses/classify", h.Statuses.ClassifyStatus)
			protected.GET("/lookups", h.Lookups.GetLookups)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
}
