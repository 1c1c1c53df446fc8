package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrRecordNotFound    = errors.New("stock record not found")
	ErrVersionConflict   = errors.New("stock record was modified concurrently")
	ErrAlreadyReconciled = errors.New("cutting batch is already reconciled")
	ErrNotReserved       = errors.New("cutting batch has no stock reservation")
)

// ValidationError is returned for malformed input, before anything is mutated.
type ValidationError struct {
	Property string `json:"property"`
	Message  string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Property == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Property, e.Message)
}

type InsufficientStockError struct {
	FabricName string          `json:"fabric_name"`
	Color      string          `json:"color"`
	Available  decimal.Decimal `json:"available"`
	Requested  decimal.Decimal `json:"requested"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for %s/%s: available %s, requested %s",
		e.FabricName, e.Color, e.Available.String(), e.Requested.String(),
	)
}

type NotFoundError struct {
	Resource string `json:"resource"`
	Key      string `json:"key"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	if e.Resource == "stock record" {
		return ErrRecordNotFound
	}
	return nil
}
