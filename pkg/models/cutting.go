package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"garment/pkg/metadata"
)

type CuttingBatch struct {
	ID             int                  `json:"id" db:"id"`
	LotNumber      string               `json:"lot_number" db:"lot_number"`
	FabricName     string               `json:"fabric_name" db:"fabric_name"`
	PatternName    string               `json:"pattern_name" db:"pattern_name"`
	Sizes          []string             `json:"sizes" db:"-"`
	Roles          []CuttingRole        `json:"roles" db:"-"`
	BeforeComplete bool                 `json:"before_complete" db:"before_complete"`
	AfterComplete  bool                 `json:"after_complete" db:"after_complete"`
	Status         metadata.BatchStatus `json:"status" db:"status"`
	CreatedAt      time.Time            `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time           `json:"completed_at" db:"completed_at"`
}

func (b *CuttingBatch) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   strconvInt(b.ID),
		ResourceType: "cutting_batch",
	}
}

func (b *CuttingBatch) Role(number int) *CuttingRole {
	for i := range b.Roles {
		if b.Roles[i].RoleNumber == number {
			return &b.Roles[i]
		}
	}
	return nil
}

type CuttingRole struct {
	ID            int              `json:"id" db:"id"`
	BatchID       int              `json:"-" db:"batch_id"`
	RoleNumber    int              `json:"role_number" db:"role_number"`
	Color         string           `json:"color" db:"color"`
	PlannedWeight decimal.Decimal  `json:"planned_weight" db:"planned_weight"`
	StockID       string           `json:"stock_id" db:"stock_id"`
	LayersCut     *decimal.Decimal `json:"layers_cut" db:"layers_cut"`
	PiecesCut     *decimal.Decimal `json:"pieces_cut" db:"pieces_cut"`
}

type CuttingBeforeRequest struct {
	LotNumber   string               `json:"lot_number" binding:"required"`
	FabricName  string               `json:"fabric_name" binding:"required"`
	PatternName string               `json:"pattern_name"`
	Sizes       []string             `json:"sizes" binding:"required,min=1"`
	Roles       []CuttingRoleRequest `json:"roles" binding:"required,min=1,dive"`
}

type CuttingRoleRequest struct {
	RoleNumber    int             `json:"role_number" binding:"required"`
	Color         string          `json:"color" binding:"required"`
	PlannedWeight decimal.Decimal `json:"planned_weight"`
}

type CuttingAfterRequest struct {
	Roles []CuttingActualRequest `json:"roles" binding:"required,min=1,dive"`
}

type CuttingActualRequest struct {
	RoleNumber int             `json:"role_number" binding:"required"`
	LayersCut  decimal.Decimal `json:"layers_cut"`
}

func strconvInt(id int) string {
	return strconv.Itoa(id)
}
