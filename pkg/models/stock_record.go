package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockRecord struct {
	ID                 string          `json:"id" db:"id"`
	FabricName         string          `json:"fabric_name" db:"fabric_name"`
	Color              string          `json:"color" db:"color"`
	Quantity           decimal.Decimal `json:"quantity" db:"quantity"`
	StandardUnitWeight decimal.Decimal `json:"standard_unit_weight" db:"standard_unit_weight"`
	DisplayColor       string          `json:"display_color" db:"display_color"`
	Retired            bool            `json:"retired" db:"retired"`
	RetiredAt          *time.Time      `json:"retired_at" db:"retired_at"`
	LastUpdated        time.Time       `json:"last_updated" db:"last_updated"`
	Version            int             `json:"-" db:"version"`
}

func (s *StockRecord) Key() StockKey {
	return StockKey{FabricName: s.FabricName, Color: s.Color}
}

// Retire marks the record as exhausted. Calling it on a retired record keeps the
// original timestamp.
func (s *StockRecord) Retire(at time.Time) {
	if s.Retired {
		return
	}
	s.Retired = true
	s.RetiredAt = &at
}

func (s *StockRecord) Unretire() {
	s.Retired = false
	s.RetiredAt = nil
}

func (s *StockRecord) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   s.ID,
		ResourceType: "stock",
	}
}

// StockKey is the business identity of a stock record. It is only used to find
// or create records; everything else references StockRecord.ID.
type StockKey struct {
	FabricName string `json:"fabric_name"`
	Color      string `json:"color"`
}

func (k StockKey) String() string {
	return k.FabricName + "/" + k.Color
}

type MovementKind string

const (
	MovementIntake  MovementKind = "intake"
	MovementReserve MovementKind = "reserve"
	MovementReturn  MovementKind = "return"
	MovementConsume MovementKind = "consume"
)

type StockMovement struct {
	ID        int             `json:"id" db:"id"`
	StockID   string          `json:"stock_id" db:"stock_id"`
	Kind      MovementKind    `json:"kind" db:"kind"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"` // signed delta
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	Shortfall decimal.Decimal `json:"shortfall" db:"shortfall"`
	Reference string          `json:"reference" db:"reference"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
