package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Vendor struct {
	ID          int            `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	BillNumber  string         `json:"bill_number" db:"bill_number"`
	Phone       string         `json:"phone" db:"phone"`
	DeliveredAt time.Time      `json:"delivered_at" db:"delivered_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	Fabrics     []VendorFabric `json:"fabrics" db:"-"`
}

func (v *Vendor) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   strconvInt(v.ID),
		ResourceType: "vendor",
	}
}

type VendorFabric struct {
	ID             int             `json:"id" db:"id"`
	VendorID       int             `json:"-" db:"vendor_id"`
	StockID        string          `json:"stock_id" db:"stock_id"`
	FabricName     string          `json:"fabric_name" db:"fabric_name"`
	Color          string          `json:"color" db:"color"`
	Weight         decimal.Decimal `json:"weight" db:"weight"`
	StandardWeight decimal.Decimal `json:"standard_weight" db:"standard_weight"`
	DisplayColor   string          `json:"display_color" db:"display_color"`
}

type VendorRequest struct {
	Name        string                `json:"name" binding:"required"`
	BillNumber  string                `json:"bill_number"`
	Phone       string                `json:"phone"`
	DeliveredAt *time.Time            `json:"delivered_at"`
	Fabrics     []VendorFabricRequest `json:"fabrics" binding:"required,min=1,dive"`
}

type VendorFabricRequest struct {
	FabricName     string           `json:"fabric_name" binding:"required"`
	Color          string           `json:"color" binding:"required"`
	Weight         decimal.Decimal  `json:"weight"`
	StandardWeight *decimal.Decimal `json:"standard_weight"`
	DisplayColor   string           `json:"display_color"`
}

type PatchVendorRequest struct {
	Name       *string `json:"name"`
	BillNumber *string `json:"bill_number"`
	Phone      *string `json:"phone"`
}
