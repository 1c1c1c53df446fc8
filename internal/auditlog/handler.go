package auditlog

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"garment/pkg/models"
	"garment/pkg/security"
)

type LogReader interface {
	GetResourceLog(ctx context.Context, resourceID string, resourceType string) ([]models.AuditLog, error)
}

type Handler struct {
	Repository LogReader
}

func NewHandler(r LogReader) *Handler {
	return &Handler{Repository: r}
}

var resourceTypes = map[string]string{
	"stocks":  "stock",
	"vendors": "vendor",
	"cutting": "cutting_batch",
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/history/:resource/:id", security.Authorize("moderator"), h.GetHistory)
}

func (h *Handler) GetHistory(c *gin.Context) {
	resourceType, ok := resourceTypes[c.Param("resource")]
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Unknown resource", "details": c.Param("resource")})
		return
	}

	logs, err := h.Repository.GetResourceLog(c.Request.Context(), c.Param("id"), resourceType)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}
