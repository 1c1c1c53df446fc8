package stocks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"garment/internal/core/apierror"
	"garment/internal/ledger"
	"garment/pkg/models"
	"garment/pkg/security"
)

type StockReader interface {
	GetStocks(ctx context.Context, filter StockFilter) ([]models.StockRecord, error)
	GetAllStocks(ctx context.Context) ([]models.StockRecord, error)
	GetStock(ctx context.Context, id string) (*models.StockRecord, error)
	GetMovements(ctx context.Context, stockID string) ([]models.StockMovement, error)
}

type StockHandler struct {
	Repository StockReader
}

func NewStockHandler(r StockReader) *StockHandler {
	return &StockHandler{Repository: r}
}

func (h *StockHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/stocks", security.Authorize("user"), h.GetStocks)
	router.GET("/stocks/:id", security.Authorize("user"), h.GetStock)
	router.GET("/stocks/:id/movements", security.Authorize("user"), h.GetMovements)
	router.GET("/stock/report", security.Authorize("user"), h.GetReport)
	router.GET("/stock/report/export", security.Authorize("moderator"), h.ExportReport)
}

func (h *StockHandler) GetStocks(c *gin.Context) {
	var filter StockFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "details": err.Error()})
		return
	}

	records, err := h.Repository.GetStocks(c.Request.Context(), filter)
	if err != nil {
		apierror.Respond(c, err, "Failed to fetch stock records")
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *StockHandler) GetStock(c *gin.Context) {
	record, err := h.Repository.GetStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierror.Respond(c, err, "Failed to fetch stock record")
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *StockHandler) GetMovements(c *gin.Context) {
	stockID := c.Param("id")
	if _, err := h.Repository.GetStock(c.Request.Context(), stockID); err != nil {
		apierror.Respond(c, err, "Failed to fetch stock record")
		return
	}

	movements, err := h.Repository.GetMovements(c.Request.Context(), stockID)
	if err != nil {
		apierror.Respond(c, err, "Failed to fetch stock movements")
		return
	}

	c.JSON(http.StatusOK, movements)
}

func (h *StockHandler) GetReport(c *gin.Context) {
	report, _, ok := h.buildReport(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *StockHandler) ExportReport(c *gin.Context) {
	report, records, ok := h.buildReport(c)
	if !ok {
		return
	}

	buffer, err := ExportReport(report, records, time.Now())
	if err != nil {
		apierror.Respond(c, err, "Failed to export stock report")
		return
	}

	filename := fmt.Sprintf("stock_report_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buffer.Bytes())
}

func (h *StockHandler) buildReport(c *gin.Context) (ledger.Report, []models.StockRecord, bool) {
	var filter ledger.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "details": err.Error()})
		return ledger.Report{}, nil, false
	}

	records, err := h.Repository.GetAllStocks(c.Request.Context())
	if err != nil {
		apierror.Respond(c, err, "Failed to build stock report")
		return ledger.Report{}, nil, false
	}

	if !filter.IncludeRetired {
		active := make([]models.StockRecord, 0, len(records))
		for _, record := range records {
			if !record.Retired {
				active = append(active, record)
			}
		}
		records = active
	}

	return ledger.Summarize(records, filter), records, true
}
