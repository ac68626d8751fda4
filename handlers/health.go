package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the clinic store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealth registers /health (liveness) and /ready (the store answers a ping).
func RegisterHealth(r *gin.Engine, store Pinger, started time.Time) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the database answers a ping
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		deps := gin.H{"storage": true}
		uptime := time.Since(started).Round(time.Second).String()
		if err := store.Ping(ctx); err != nil {
			deps["storage"] = false
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "error": err.Error(), "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})
}
