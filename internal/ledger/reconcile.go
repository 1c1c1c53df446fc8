package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"garment/pkg/metadata"
	"garment/pkg/models"
)

type RoleActual struct {
	RoleNumber int
	LayersCut  decimal.Decimal `validate:"gte=0,qty"`
}

type reconcileInput struct {
	Actuals []RoleActual `validate:"required,min=1,dive"`
}

// Shortfall is fabric that was cut beyond the reservation but was no longer in
// stock. It is reported, never rejected.
type Shortfall struct {
	RoleNumber int             `json:"role_number"`
	FabricName string          `json:"fabric_name"`
	Color      string          `json:"color"`
	Requested  decimal.Decimal `json:"requested"`
	Consumed   decimal.Decimal `json:"consumed"`
	Missing    decimal.Decimal `json:"missing"`
}

type RoleAdjustment struct {
	RoleNumber int             `json:"role_number"`
	StockID    string          `json:"stock_id"`
	Delta      decimal.Decimal `json:"delta"` // positive: returned to stock
	Balance    decimal.Decimal `json:"balance"`
}

type Reconciliation struct {
	Adjustments []RoleAdjustment `json:"adjustments"`
	Shortfalls  []Shortfall      `json:"shortfalls"`
}

func (r *Reconciliation) HasShortfall() bool {
	return len(r.Shortfalls) > 0
}

// Reconcile settles a reserved batch against what was actually cut and fills in
// the cut results on the batch. The caller persists the batch in the same
// transaction as the store.
func (l *Ledger) Reconcile(ctx context.Context, store StockStore, batch *models.CuttingBatch, actuals []RoleActual) (*Reconciliation, error) {
	if batch.AfterComplete {
		return nil, ErrAlreadyReconciled
	}
	if !batch.BeforeComplete {
		return nil, ErrNotReserved
	}
	if err := l.validateInput(reconcileInput{Actuals: actuals}); err != nil {
		return nil, err
	}
	byRole, err := matchActuals(batch, actuals)
	if err != nil {
		return nil, err
	}

	now := l.now()
	ws := newWorkset(store)
	result := &Reconciliation{
		Adjustments: []RoleAdjustment{},
		Shortfalls:  []Shortfall{},
	}
	sizeCount := decimal.NewFromInt(int64(len(batch.Sizes)))

	for i := range batch.Roles {
		role := &batch.Roles[i]
		actual := byRole[role.RoleNumber]
		delta := actual.Sub(role.PlannedWeight)
		key := models.StockKey{FabricName: batch.FabricName, Color: role.Color}

		switch delta.Sign() {
		case -1:
			adjustment, err := l.returnUnused(ctx, ws, role, key, delta.Neg(), batch.LotNumber, now)
			if err != nil {
				return nil, err
			}
			result.Adjustments = append(result.Adjustments, *adjustment)
		case 1:
			adjustment, shortfall, err := l.consumeExtra(ctx, ws, role, key, delta, batch.LotNumber, now)
			if err != nil {
				return nil, err
			}
			if adjustment != nil {
				result.Adjustments = append(result.Adjustments, *adjustment)
			}
			if shortfall != nil {
				result.Shortfalls = append(result.Shortfalls, *shortfall)
			}
		}

		layers := actual
		pieces := actual.Mul(sizeCount)
		role.LayersCut = &layers
		role.PiecesCut = &pieces
	}

	if err := ws.flush(ctx); err != nil {
		return nil, err
	}

	batch.AfterComplete = true
	batch.Status = metadata.BatchStatusCompleted
	batch.CompletedAt = &now

	for _, shortfall := range result.Shortfalls {
		l.logger.Warn("Cutting used more fabric than available in stock",
			zap.String("lot_number", batch.LotNumber),
			zap.Int("role_number", shortfall.RoleNumber),
			zap.String("fabric_name", shortfall.FabricName),
			zap.String("color", shortfall.Color),
			zap.String("missing", shortfall.Missing.String()),
		)
	}

	return result, nil
}

func (l *Ledger) returnUnused(ctx context.Context, ws *workset, role *models.CuttingRole, key models.StockKey, amount decimal.Decimal, reference string, now time.Time) (*RoleAdjustment, error) {
	record, err := ws.byReference(ctx, role.StockID, key)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		record = &models.StockRecord{
			ID:                 uuid.NewString(),
			FabricName:         key.FabricName,
			Color:              key.Color,
			StandardUnitWeight: amount,
			DisplayColor:       metadata.DefaultDisplayColor.String(),
		}
		ws.add(record)
		l.logger.Info("Stock record recreated for returned fabric",
			zap.String("stock_id", record.ID),
			zap.String("key", key.String()),
		)
	case err != nil:
		return nil, err
	}

	record.Quantity = record.Quantity.Add(amount)
	record.LastUpdated = now
	if record.Retired {
		record.Unretire()
	}
	ws.touch(record, models.StockMovement{
		Kind:      models.MovementReturn,
		Quantity:  amount,
		Reference: reference,
	})

	return &RoleAdjustment{
		RoleNumber: role.RoleNumber,
		StockID:    record.ID,
		Delta:      amount,
		Balance:    record.Quantity,
	}, nil
}

// consumeExtra takes what is left when the cut exceeded the reservation; the
// remainder becomes a shortfall.
func (l *Ledger) consumeExtra(ctx context.Context, ws *workset, role *models.CuttingRole, key models.StockKey, amount decimal.Decimal, reference string, now time.Time) (*RoleAdjustment, *Shortfall, error) {
	record, err := ws.byReference(ctx, role.StockID, key)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, &Shortfall{
			RoleNumber: role.RoleNumber,
			FabricName: key.FabricName,
			Color:      key.Color,
			Requested:  amount,
			Consumed:   decimal.Zero,
			Missing:    amount,
		}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	consumed := decimal.Min(amount, record.Quantity)
	var shortfall *Shortfall
	if consumed.LessThan(amount) {
		shortfall = &Shortfall{
			RoleNumber: role.RoleNumber,
			FabricName: key.FabricName,
			Color:      key.Color,
			Requested:  amount,
			Consumed:   consumed,
			Missing:    amount.Sub(consumed),
		}
	}

	record.Quantity = record.Quantity.Sub(consumed)
	record.LastUpdated = now
	if !record.Quantity.IsPositive() {
		record.Retire(now)
	}
	move := models.StockMovement{
		Kind:      models.MovementConsume,
		Quantity:  consumed.Neg(),
		Reference: reference,
	}
	if shortfall != nil {
		move.Shortfall = shortfall.Missing
	}
	ws.touch(record, move)

	return &RoleAdjustment{
		RoleNumber: role.RoleNumber,
		StockID:    record.ID,
		Delta:      consumed.Neg(),
		Balance:    record.Quantity,
	}, shortfall, nil
}

func matchActuals(batch *models.CuttingBatch, actuals []RoleActual) (map[int]decimal.Decimal, error) {
	byRole := make(map[int]decimal.Decimal, len(actuals))
	for _, actual := range actuals {
		if batch.Role(actual.RoleNumber) == nil {
			return nil, &ValidationError{
				Property: "roles",
				Message:  fmt.Sprintf("role %d is not part of lot %s", actual.RoleNumber, batch.LotNumber),
			}
		}
		if _, ok := byRole[actual.RoleNumber]; ok {
			return nil, &ValidationError{
				Property: "roles",
				Message:  fmt.Sprintf("role %d reported more than once", actual.RoleNumber),
			}
		}
		byRole[actual.RoleNumber] = actual.LayersCut
	}

	for _, role := range batch.Roles {
		if _, ok := byRole[role.RoleNumber]; !ok {
			return nil, &ValidationError{
				Property: "roles",
				Message:  fmt.Sprintf("missing cut result for role %d", role.RoleNumber),
			}
		}
	}

	return byRole, nil
}
