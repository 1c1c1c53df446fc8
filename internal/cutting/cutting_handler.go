package cutting

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"garment/internal/core/apierror"
	"garment/pkg/auditlog"
	"garment/pkg/models"
	"garment/pkg/security"
)

type Service interface {
	StartCutting(ctx context.Context, req models.CuttingBeforeRequest) (*BeforeResult, error)
	CompleteCutting(ctx context.Context, id int, req models.CuttingAfterRequest) (*AfterResult, error)
	GetBatches(ctx context.Context, filter BatchFilter) ([]models.CuttingBatch, error)
	GetBatch(ctx context.Context, id int) (*models.CuttingBatch, error)
}

type CuttingHandler struct {
	Service  Service
	AuditLog *auditlog.Auditlog
}

func NewHandler(s Service, a *auditlog.Auditlog) *CuttingHandler {
	return &CuttingHandler{
		Service:  s,
		AuditLog: a,
	}
}

func (h *CuttingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/cutting/before", security.Authorize("user"), h.StartCutting)
	router.PUT("/cutting/:id/after", security.Authorize("user"), h.CompleteCutting)
	router.GET("/cutting", security.Authorize("user"), h.GetBatches)
	router.GET("/cutting/:id", security.Authorize("user"), h.GetBatch)
}

func (h *CuttingHandler) StartCutting(c *gin.Context) {
	var req models.CuttingBeforeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	result, err := h.Service.StartCutting(c.Request.Context(), req)
	if err != nil {
		apierror.Respond(c, err, "Failed to start cutting")
		return
	}

	go h.AuditLog.Log(
		"reserve",
		map[string]interface{}{
			"lot_number":   result.Batch.LotNumber,
			"reservations": result.Reservations,
			"msg":          "Fabric reserved for cutting",
		},
		result.Batch,
	)

	c.JSON(http.StatusCreated, result)
}

func (h *CuttingHandler) CompleteCutting(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid batch ID", "details": err.Error()})
		return
	}

	var req models.CuttingAfterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	result, err := h.Service.CompleteCutting(c.Request.Context(), id, req)
	if err != nil {
		apierror.Respond(c, err, "Failed to complete cutting")
		return
	}

	go h.AuditLog.Log(
		"reconcile",
		map[string]interface{}{
			"lot_number":  result.Batch.LotNumber,
			"adjustments": result.Adjustments,
			"shortfalls":  result.Shortfalls,
		},
		result.Batch,
	)

	c.JSON(http.StatusOK, result)
}

func (h *CuttingHandler) GetBatches(c *gin.Context) {
	var filter BatchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "details": err.Error()})
		return
	}

	batches, err := h.Service.GetBatches(c.Request.Context(), filter)
	if err != nil {
		apierror.Respond(c, err, "Could not obtain list of cutting batches")
		return
	}

	c.JSON(http.StatusOK, batches)
}

func (h *CuttingHandler) GetBatch(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid batch ID", "details": err.Error()})
		return
	}

	batch, err := h.Service.GetBatch(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, err, "Failed to get cutting batch")
		return
	}

	c.JSON(http.StatusOK, batch)
}
