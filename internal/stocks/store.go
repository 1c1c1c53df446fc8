package stocks

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"garment/internal/ledger"
	custom_error "garment/pkg/errors"
	"garment/pkg/models"
)

var stockColumns = []interface{}{
	"id", "fabric_name", "color", "quantity", "standard_unit_weight",
	"display_color", "retired", "retired_at", "last_updated", "version",
}

// TxStore is the ledger.StockStore of one database transaction. Rows read
// through it stay locked until the transaction ends.
type TxStore struct {
	tx *goqu.TxDatabase
}

func NewTxStore(tx *goqu.TxDatabase) *TxStore {
	return &TxStore{tx: tx}
}

func (s *TxStore) FindByKey(ctx context.Context, key models.StockKey) (*models.StockRecord, error) {
	return s.findOne(ctx, goqu.Ex{"fabric_name": key.FabricName, "color": key.Color})
}

func (s *TxStore) FindByID(ctx context.Context, id string) (*models.StockRecord, error) {
	return s.findOne(ctx, goqu.Ex{"id": id})
}

func (s *TxStore) findOne(ctx context.Context, where goqu.Ex) (*models.StockRecord, error) {
	var record models.StockRecord
	found, err := s.tx.From("stock_records").
		Select(stockColumns...).
		Where(where).
		ForUpdate(exp.Wait).
		Executor().
		ScanStructContext(ctx, &record)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock record: %w", err)
	}
	if !found {
		return nil, ledger.ErrRecordNotFound
	}

	return &record, nil
}

func (s *TxStore) Create(ctx context.Context, record *models.StockRecord) error {
	query := s.tx.Insert("stock_records").
		Rows(goqu.Record{
			"id":                   record.ID,
			"fabric_name":          record.FabricName,
			"color":                record.Color,
			"quantity":             record.Quantity,
			"standard_unit_weight": record.StandardUnitWeight,
			"display_color":        record.DisplayColor,
			"retired":              record.Retired,
			"retired_at":           record.RetiredAt,
			"last_updated":         record.LastUpdated,
			"version":              1,
		})

	if _, err := query.Executor().ExecContext(ctx); err != nil {
		return custom_error.FromPQ(err, fmt.Sprintf("failed to insert stock record %s", record.Key()))
	}
	record.Version = 1

	return nil
}

func (s *TxStore) Save(ctx context.Context, record *models.StockRecord) error {
	result, err := s.tx.Update("stock_records").
		Set(goqu.Record{
			"fabric_name":          record.FabricName,
			"color":                record.Color,
			"quantity":             record.Quantity,
			"standard_unit_weight": record.StandardUnitWeight,
			"display_color":        record.DisplayColor,
			"retired":              record.Retired,
			"retired_at":           record.RetiredAt,
			"last_updated":         record.LastUpdated,
			"version":              record.Version + 1,
		}).
		Where(goqu.Ex{
			"id":      record.ID,
			"version": record.Version,
		}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.FromPQ(err, fmt.Sprintf("failed to update stock record %s", record.ID))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("stock record %s version %d: %w", record.ID, record.Version, ledger.ErrVersionConflict)
	}
	record.Version++

	return nil
}

func (s *TxStore) RecordMovement(ctx context.Context, movement models.StockMovement) error {
	query := s.tx.Insert("stock_movements").
		Rows(goqu.Record{
			"stock_id":  movement.StockID,
			"kind":      movement.Kind,
			"quantity":  movement.Quantity,
			"balance":   movement.Balance,
			"shortfall": movement.Shortfall,
			"reference": movement.Reference,
		})

	if _, err := query.Executor().ExecContext(ctx); err != nil {
		return custom_error.FromPQ(err, "failed to insert stock movement")
	}

	return nil
}
