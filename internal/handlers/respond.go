package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go-shop-manager/internal/apperr"
	"go-shop-manager/internal/logger"

	"github.com/gin-gonic/gin"
)

// respondError writes err with the status its kind maps to. Unexpected errors
// are logged and hidden from the client.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.LogError("handlers", c.HandlerName(), gin.H{"path": c.Request.URL.Path, "method": c.Request.Method}, err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseID reads the :id path parameter, answering 400 itself on failure.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the body into dst, answering 400 with the offending field
// when it can be named.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	if errors.Is(err, io.EOF) {
		return apperr.Validation("request body is required")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Validation("%s: cannot use %s as %s", typeErr.Field, typeErr.Value, typeErr.Type)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return apperr.Validation("malformed JSON at offset %d", syntaxErr.Offset)
	}
	return apperr.Validation("invalid input: %v", err)
}
