package controllers

import (
	"context"
	"errors"
	"net/http"

	"fund-portal/backend"
	"fund-portal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service and backend errors onto the gateway's JSON error shape.
func respondError(c *gin.Context, logger *zap.Logger, fallback string, err error) {
	var noPages *services.NoMergeablePagesError
	var statusErr *backend.StatusError

	switch {
	case errors.As(err, &noPages):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": noPages.Error(), "skipped": noPages.Skipped})
	case errors.Is(err, services.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": "superseded"})
	case errors.Is(err, services.ErrScreenClosed):
		c.JSON(http.StatusGone, gin.H{"error": "screen closed"})
	case errors.Is(err, services.ErrMergedNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Merged document not found"})
	case errors.Is(err, services.ErrInvalidFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, backend.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
	case errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden):
		c.JSON(statusErr.StatusCode, gin.H{"error": http.StatusText(statusErr.StatusCode)})
	case errors.Is(err, context.Canceled) && c.Request.Context().Err() != nil:
		// client went away
		c.Status(499)
	default:
		logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
	}
}
