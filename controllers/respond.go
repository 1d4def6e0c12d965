package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/quickbasket/storefront/logger"
	"github.com/quickbasket/storefront/services"
)

// respondError maps service errors to their HTTP status; anything unmapped is
// a 500 with the detail kept in the logs, not the response.
func respondError(c *gin.Context, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	logger.Error(c, "Unhandled service error", err, zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// paginationMeta is the envelope for paginated list responses.
func paginationMeta(page, limit int, total int64) gin.H {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return gin.H{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
		"has_more":    page < totalPages,
	}
}
