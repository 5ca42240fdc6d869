package middleware

import (
	"net/http"

	"go-shop-manager/internal/logger"
	"go-shop-manager/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditMiddleware stores one AuditLog row for every state-changing request
// made by a signed-in user. It must run after AuthMiddleware.
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		userID, ok := c.Get(ContextUserID)
		if !ok {
			return
		}

		entry := models.AuditLog{
			UserID:    userID.(uint),
			Method:    c.Request.Method,
			Path:      c.FullPath(),
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			RequestID: c.GetString(ContextRequestID),
		}
		if entry.Path == "" {
			entry.Path = c.Request.URL.Path
		}
		if err := db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
			logger.LogError("audit", "AuditMiddleware", entry, err)
		}
	}
}
