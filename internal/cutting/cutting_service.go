package cutting

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"

	"garment/internal/ledger"
	"garment/internal/repository"
	"garment/internal/stocks"
	"garment/pkg/metadata"
	"garment/pkg/models"
)

type BeforeResult struct {
	Batch        *models.CuttingBatch `json:"batch"`
	Reservations []ledger.Reservation `json:"reservations"`
}

type AfterResult struct {
	Batch *models.CuttingBatch `json:"batch"`
	*ledger.Reconciliation
}

type CuttingService struct {
	repository *repository.Repository
	batches    *CuttingRepository
	ledger     *ledger.Ledger
	logger     *zap.Logger
}

func NewService(r *repository.Repository, l *ledger.Ledger, logger *zap.Logger) *CuttingService {
	return &CuttingService{
		repository: r,
		batches:    NewRepository(r),
		ledger:     l,
		logger:     logger,
	}
}

// StartCutting records a cutting batch and reserves the planned fabric of its
// roles. Nothing is stored when any role cannot be covered.
func (s *CuttingService) StartCutting(ctx context.Context, req models.CuttingBeforeRequest) (*BeforeResult, error) {
	if err := checkRoleNumbers(req.Roles); err != nil {
		return nil, err
	}

	input := ledger.ReserveInput{
		FabricName: req.FabricName,
		Reference:  req.LotNumber,
		Roles:      make([]ledger.RoleReservation, 0, len(req.Roles)),
	}
	for _, role := range req.Roles {
		input.Roles = append(input.Roles, ledger.RoleReservation{
			RoleNumber:    role.RoleNumber,
			Color:         role.Color,
			PlannedWeight: role.PlannedWeight,
		})
	}

	var result *BeforeResult
	err := s.ledger.Exclusive(ctx, input.Keys(), func(ctx context.Context) error {
		batch := &models.CuttingBatch{
			LotNumber:      req.LotNumber,
			FabricName:     req.FabricName,
			PatternName:    req.PatternName,
			Sizes:          req.Sizes,
			BeforeComplete: true,
			Status:         metadata.BatchStatusReserved,
		}

		return s.repository.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
			if err := s.batches.InsertBatch(ctx, tx, batch); err != nil {
				return err
			}

			reservations, err := s.ledger.Reserve(ctx, stocks.NewTxStore(tx), input)
			if err != nil {
				return err
			}

			batch.Roles = make([]models.CuttingRole, 0, len(reservations))
			for i, reservation := range reservations {
				batch.Roles = append(batch.Roles, models.CuttingRole{
					RoleNumber:    reservation.RoleNumber,
					Color:         req.Roles[i].Color,
					PlannedWeight: req.Roles[i].PlannedWeight,
					StockID:       reservation.StockID,
				})
			}
			if err := s.batches.InsertRoles(ctx, tx, batch); err != nil {
				return err
			}

			result = &BeforeResult{Batch: batch, Reservations: reservations}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CompleteCutting reconciles the batch against the cut results. Running it a
// second time fails with ledger.ErrAlreadyReconciled.
func (s *CuttingService) CompleteCutting(ctx context.Context, id int, req models.CuttingAfterRequest) (*AfterResult, error) {
	current, err := s.batches.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.AfterComplete {
		return nil, ledger.ErrAlreadyReconciled
	}

	keys := make([]models.StockKey, 0, len(current.Roles))
	for _, role := range current.Roles {
		keys = append(keys, models.StockKey{FabricName: current.FabricName, Color: role.Color})
	}

	actuals := make([]ledger.RoleActual, 0, len(req.Roles))
	for _, role := range req.Roles {
		actuals = append(actuals, ledger.RoleActual{RoleNumber: role.RoleNumber, LayersCut: role.LayersCut})
	}

	var result *AfterResult
	err = s.ledger.Exclusive(ctx, keys, func(ctx context.Context) error {
		return s.repository.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
			batch, err := s.batches.GetBatchForUpdate(ctx, tx, id)
			if err != nil {
				return err
			}

			reconciliation, err := s.ledger.Reconcile(ctx, stocks.NewTxStore(tx), batch, actuals)
			if err != nil {
				return err
			}
			if err := s.batches.CompleteBatch(ctx, tx, batch); err != nil {
				return err
			}

			result = &AfterResult{Batch: batch, Reconciliation: reconciliation}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cutting batch completed",
		zap.Int("batch_id", id),
		zap.String("lot_number", result.Batch.LotNumber),
		zap.Int("shortfalls", len(result.Shortfalls)),
	)

	return result, nil
}

func (s *CuttingService) GetBatches(ctx context.Context, filter BatchFilter) ([]models.CuttingBatch, error) {
	if filter.Status != "" {
		if _, err := metadata.NewBatchStatus(filter.Status); err != nil {
			return nil, &ledger.ValidationError{Property: "status", Message: err.Error()}
		}
	}
	return s.batches.GetBatches(ctx, filter)
}

func (s *CuttingService) GetBatch(ctx context.Context, id int) (*models.CuttingBatch, error) {
	return s.batches.GetBatch(ctx, id)
}

func checkRoleNumbers(roles []models.CuttingRoleRequest) error {
	seen := make(map[int]bool, len(roles))
	for _, role := range roles {
		if seen[role.RoleNumber] {
			return &ledger.ValidationError{
				Property: "roles",
				Message:  fmt.Sprintf("role %d is listed more than once", role.RoleNumber),
			}
		}
		seen[role.RoleNumber] = true
	}
	return nil
}
