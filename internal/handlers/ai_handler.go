package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-shop-manager/internal/ai"
	"go-shop-manager/internal/logger"

	"github.com/gin-gonic/gin"
)

type AskRequest struct {
	Message string `json:"message"`
}

// Assistant is what the ask endpoint needs from the agent.
type Assistant interface {
	RunAgent(ctx context.Context, message string) (string, error)
}

type AIHandler struct {
	agent Assistant
}

func NewAIHandler(agent Assistant) *AIHandler {
	return &AIHandler{agent: agent}
}

// --- POST: /api/ask (admin) ---
func (h *AIHandler) AskAI(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	response, err := h.agent.RunAgent(c.Request.Context(), req.Message)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured"})
			return
		}
		logger.LogError("handlers", "AskAI", nil, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant request failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": response})
}
