package vendors

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
	CreateVendor(ctx context.Context, req models.VendorRequest) (*models.Vendor, error)
	GetVendors(ctx context.Context) ([]models.Vendor, error)
	GetVendor(ctx context.Context, id int) (*models.Vendor, error)
	UpdateVendor(ctx context.Context, id int, req models.PatchVendorRequest) (*models.Vendor, error)
}

type VendorHandler struct {
	Service  Service
	AuditLog *auditlog.Auditlog
}

func NewHandler(s Service, a *auditlog.Auditlog) *VendorHandler {
	return &VendorHandler{
		Service:  s,
		AuditLog: a,
	}
}

func (h *VendorHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/vendors", security.Authorize("user"), h.CreateVendor)
	router.GET("/vendors", security.Authorize("user"), h.GetVendors)
	router.GET("/vendors/:id", security.Authorize("user"), h.GetVendor)
	router.PATCH("/vendors/:id", security.Authorize("moderator"), h.UpdateVendor)
}

func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req models.VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	vendor, err := h.Service.CreateVendor(c.Request.Context(), req)
	if err != nil {
		apierror.Respond(c, err, "Failed to register vendor delivery")
		return
	}

	go h.AuditLog.Log(
		"create",
		map[string]interface{}{
			"name":    vendor.Name,
			"fabrics": vendor.Fabrics,
			"msg":     "Vendor delivery taken into stock",
		},
		vendor,
	)

	c.JSON(http.StatusCreated, vendor)
}

func (h *VendorHandler) GetVendors(c *gin.Context) {
	vendors, err := h.Service.GetVendors(c.Request.Context())
	if err != nil {
		apierror.Respond(c, err, "Could not obtain list of vendors")
		return
	}

	c.JSON(http.StatusOK, vendors)
}

func (h *VendorHandler) GetVendor(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor ID", "details": err.Error()})
		return
	}

	vendor, err := h.Service.GetVendor(c.Request.Context(), id)
	if err != nil {
		apierror.Respond(c, err, "Failed to get vendor")
		return
	}

	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor ID", "details": err.Error()})
		return
	}

	var req models.PatchVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	vendor, err := h.Service.UpdateVendor(c.Request.Context(), id, req)
	if err != nil {
		apierror.Respond(c, err, "Failed to update vendor")
		return
	}

	go h.AuditLog.Log("update", req, vendor)

	c.JSON(http.StatusOK, vendor)
}
