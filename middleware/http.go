package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScreenIDHeader carries the id of the UI screen a request belongs to.
const ScreenIDHeader = "X-Screen-ID"

// DefaultScreenID is used for requests that carry no screen header.
const DefaultScreenID = "default"

// ScreenID returns the screen a request belongs to. Requests without the header share the
// caller's default screen. Screen ids are only meaningful together with UserKey.
func ScreenID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(ScreenIDHeader)); id != "" {
		return id
	}
	return DefaultScreenID
}

// UserKey identifies the authenticated caller; screen sessions and merged documents are
// scoped by it.
func UserKey(c *gin.Context) string {
	userID, _ := c.Get("userID")
	return fmt.Sprintf("%v", userID)
}

// RoleID returns the role read by AuthMiddleware, or 0.
func RoleID(c *gin.Context) int {
	value, _ := c.Get("roleID")
	roleID, _ := value.(int)
	return roleID
}

// CORSMiddleware allows the configured UI origins; "*" allows any.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || allowAll {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+ScreenIDHeader)
				c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				c.Header("Vary", "Origin")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityHeaders sets the response headers every gateway response carries.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Process request
		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("screen_id", c.GetHeader(ScreenIDHeader)),
		)
	}
}
