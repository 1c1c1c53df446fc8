package cutting

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"garment/internal/ledger"
	"garment/internal/repository"
	custom_error "garment/pkg/errors"
	"garment/pkg/models"
)

var batchColumns = []interface{}{
	"id", "lot_number", "fabric_name", "pattern_name", "sizes",
	"before_complete", "after_complete", "status", "created_at", "completed_at",
}

var roleColumns = []interface{}{
	"id", "batch_id", "role_number", "color", "planned_weight", "stock_id", "layers_cut", "pieces_cut",
}

// batchRow carries the postgres array column next to the batch.
type batchRow struct {
	models.CuttingBatch
	SizeList pq.StringArray `db:"sizes"`
}

func (r batchRow) toBatch() models.CuttingBatch {
	batch := r.CuttingBatch
	batch.Sizes = []string(r.SizeList)
	return batch
}

type BatchFilter struct {
	Status     string `form:"status"`
	FabricName string `form:"fabric_name"`
}

type CuttingRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *CuttingRepository {
	return &CuttingRepository{repository: r}
}

func (r *CuttingRepository) InsertBatch(ctx context.Context, tx *goqu.TxDatabase, batch *models.CuttingBatch) error {
	query := tx.Insert("cutting_batches").
		Rows(goqu.Record{
			"lot_number":      batch.LotNumber,
			"fabric_name":     batch.FabricName,
			"pattern_name":    batch.PatternName,
			"sizes":           pq.StringArray(batch.Sizes),
			"before_complete": batch.BeforeComplete,
			"after_complete":  batch.AfterComplete,
			"status":          batch.Status,
		}).
		Returning("id", "created_at")

	if _, err := query.Executor().ScanStructContext(ctx, batch); err != nil {
		return custom_error.FromPQ(err, fmt.Sprintf("failed to insert cutting batch %s", batch.LotNumber))
	}

	return nil
}

func (r *CuttingRepository) InsertRoles(ctx context.Context, tx *goqu.TxDatabase, batch *models.CuttingBatch) error {
	for i := range batch.Roles {
		role := &batch.Roles[i]
		role.BatchID = batch.ID

		query := tx.Insert("cutting_roles").
			Rows(goqu.Record{
				"batch_id":       role.BatchID,
				"role_number":    role.RoleNumber,
				"color":          role.Color,
				"planned_weight": role.PlannedWeight,
				"stock_id":       role.StockID,
			}).
			Returning("id")

		if _, err := query.Executor().ScanValContext(ctx, &role.ID); err != nil {
			return custom_error.FromPQ(err, fmt.Sprintf("failed to insert role %d of lot %s", role.RoleNumber, batch.LotNumber))
		}
	}

	return nil
}

// GetBatchForUpdate locks the batch row so two completions of the same lot
// cannot run side by side.
func (r *CuttingRepository) GetBatchForUpdate(ctx context.Context, tx *goqu.TxDatabase, id int) (*models.CuttingBatch, error) {
	var row batchRow
	found, err := tx.From("cutting_batches").
		Select(batchColumns...).
		Where(goqu.Ex{"id": id}).
		ForUpdate(exp.Wait).
		Executor().
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cutting batch %d: %w", id, err)
	}
	if !found {
		return nil, &ledger.NotFoundError{Resource: "cutting batch", Key: fmt.Sprint(id)}
	}

	batch := row.toBatch()
	if err := tx.From("cutting_roles").
		Select(roleColumns...).
		Where(goqu.Ex{"batch_id": id}).
		Order(goqu.I("role_number").Asc()).
		Executor().
		ScanStructsContext(ctx, &batch.Roles); err != nil {
		return nil, fmt.Errorf("failed to fetch roles of cutting batch %d: %w", id, err)
	}

	return &batch, nil
}

func (r *CuttingRepository) CompleteBatch(ctx context.Context, tx *goqu.TxDatabase, batch *models.CuttingBatch) error {
	_, err := tx.Update("cutting_batches").
		Set(goqu.Record{
			"after_complete": batch.AfterComplete,
			"status":         batch.Status,
			"completed_at":   batch.CompletedAt,
		}).
		Where(goqu.Ex{"id": batch.ID}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.FromPQ(err, fmt.Sprintf("failed to complete cutting batch %d", batch.ID))
	}

	for _, role := range batch.Roles {
		_, err := tx.Update("cutting_roles").
			Set(goqu.Record{
				"layers_cut": role.LayersCut,
				"pieces_cut": role.PiecesCut,
			}).
			Where(goqu.Ex{"id": role.ID}).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return custom_error.FromPQ(err, fmt.Sprintf("failed to update role %d of cutting batch %d", role.RoleNumber, batch.ID))
		}
	}

	return nil
}

func (r *CuttingRepository) GetBatches(ctx context.Context, filter BatchFilter) ([]models.CuttingBatch, error) {
	qb := repository.NewQueryBuilder()
	qb.AddTextCondition("status", filter.Status)
	qb.AddTextCondition("fabric_name", filter.FabricName)

	var rows []batchRow
	err := r.repository.GoquDBWrapper.From("cutting_batches").
		Select(batchColumns...).
		Where(qb.BuildConditions(nil)).
		Order(goqu.I("created_at").Desc()).
		Executor().
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	batches := make([]models.CuttingBatch, 0, len(rows))
	for _, row := range rows {
		batches = append(batches, row.toBatch())
	}

	return batches, nil
}

func (r *CuttingRepository) GetBatch(ctx context.Context, id int) (*models.CuttingBatch, error) {
	var row batchRow
	found, err := r.repository.GoquDBWrapper.From("cutting_batches").
		Select(batchColumns...).
		Where(goqu.Ex{"id": id}).
		Executor().
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, &ledger.NotFoundError{Resource: "cutting batch", Key: fmt.Sprint(id)}
	}

	batch := row.toBatch()
	batch.Roles = []models.CuttingRole{}
	err = r.repository.GoquDBWrapper.From("cutting_roles").
		Select(roleColumns...).
		Where(goqu.Ex{"batch_id": id}).
		Order(goqu.I("role_number").Asc()).
		Executor().
		ScanStructsContext(ctx, &batch.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles of cutting batch %d: %w", id, err)
	}

	return &batch, nil
}
