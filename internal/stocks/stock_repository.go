package stocks

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"garment/internal/ledger"
	"garment/internal/repository"
	"garment/pkg/models"
)

type StockFilter struct {
	FabricName     string `form:"fabric_name"`
	Color          string `form:"color"`
	IncludeRetired bool   `form:"include_retired"`
}

type StockRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *StockRepository {
	return &StockRepository{repository: r}
}

func (r *StockRepository) GetStocks(ctx context.Context, filter StockFilter) ([]models.StockRecord, error) {
	qb := repository.NewQueryBuilder()
	qb.AddTextCondition("fabric_name", filter.FabricName)
	qb.AddTextCondition("color", filter.Color)
	if !filter.IncludeRetired {
		qb.ExcludeRetired()
	}

	records := []models.StockRecord{}
	err := r.repository.GoquDBWrapper.From("stock_records").
		Select(stockColumns...).
		Where(qb.BuildConditions(nil)).
		Order(goqu.I("fabric_name").Asc(), goqu.I("color").Asc()).
		Executor().
		ScanStructsContext(ctx, &records)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return records, nil
}

// GetAllStocks returns retired records too; the report decides what to show.
func (r *StockRepository) GetAllStocks(ctx context.Context) ([]models.StockRecord, error) {
	return r.GetStocks(ctx, StockFilter{IncludeRetired: true})
}

func (r *StockRepository) GetStock(ctx context.Context, id string) (*models.StockRecord, error) {
	var record models.StockRecord
	found, err := r.repository.GoquDBWrapper.From("stock_records").
		Select(stockColumns...).
		Where(goqu.Ex{"id": id}).
		Executor().
		ScanStructContext(ctx, &record)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, &ledger.NotFoundError{Resource: "stock record", Key: id}
	}

	return &record, nil
}

func (r *StockRepository) GetMovements(ctx context.Context, stockID string) ([]models.StockMovement, error) {
	movements := []models.StockMovement{}
	err := r.repository.GoquDBWrapper.From("stock_movements").
		Select("id", "stock_id", "kind", "quantity", "balance", "shortfall", "reference", "created_at").
		Where(goqu.Ex{"stock_id": stockID}).
		Order(goqu.I("id").Asc()).
		Executor().
		ScanStructsContext(ctx, &movements)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movements of stock %s: %w", stockID, err)
	}

	return movements, nil
}
