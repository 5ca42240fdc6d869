package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SystemHandler struct {
	db         *gorm.DB
	instanceID string
	driver     string
	lockKind   string
	started    time.Time
}

func NewSystemHandler(db *gorm.DB, instanceID, driver, lockKind string) *SystemHandler {
	return &SystemHandler{
		db:         db,
		instanceID: instanceID,
		driver:     driver,
		lockKind:   lockKind,
		started:    time.Now(),
	}
}

// --- GET /health --- answers 503 while the database is unreachable
func (h *SystemHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "online"})
}

// --- GET /api/system/status (admin) ---
func (h *SystemHandler) GetSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"instance_id":    h.instanceID,
		"database":       h.driver,
		"stock_lock":     h.lockKind,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
