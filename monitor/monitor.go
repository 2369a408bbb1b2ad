package monitor

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var startedAt = time.Now()

// RegisterMonitorRoutes mounts /metrics for Prometheus and a small JSON /monitor page.
func RegisterMonitorRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/monitor", monitorStatus)
}

func monitorStatus(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"memory": gin.H{
			"alloc_mb":     float64(mem.Alloc) / (1024 * 1024),
			"sys_mb":       float64(mem.Sys) / (1024 * 1024),
			"num_gc":       mem.NumGC,
			"heap_objects": mem.HeapObjects,
		},
		"go_version": runtime.Version(),
	})
}
