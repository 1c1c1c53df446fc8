package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	custom_error "garment/pkg/errors"
	"garment/pkg/metadata"
	"garment/pkg/models"
)

type IntakeInput struct {
	FabricName         string           `validate:"required"`
	Color              string           `validate:"required"`
	Weight             decimal.Decimal  `validate:"gt=0,qty"`
	StandardWeightHint *decimal.Decimal `validate:"omitempty,gte=0,qty"`
	DisplayColorHint   string
	Reference          string
}

func (in IntakeInput) Key() models.StockKey {
	return models.StockKey{FabricName: in.FabricName, Color: in.Color}
}

// Intake adds delivered fabric to the record of (fabric, color), creating it on
// first delivery. Hints only fill values that are still unset.
func (l *Ledger) Intake(ctx context.Context, store StockStore, in IntakeInput) (*models.StockRecord, error) {
	if err := l.validateInput(in); err != nil {
		return nil, err
	}
	displayColor, err := metadata.NewDisplayColor(in.DisplayColorHint)
	if err != nil {
		return nil, &ValidationError{Property: "DisplayColorHint", Message: err.Error()}
	}

	now := l.now()
	record, err := store.FindByKey(ctx, in.Key())
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return l.createFromIntake(ctx, store, in, displayColor)
	case err != nil:
		return nil, err
	}

	record.Quantity = record.Quantity.Add(in.Weight)
	record.LastUpdated = now
	if record.StandardUnitWeight.IsZero() && in.StandardWeightHint != nil {
		record.StandardUnitWeight = *in.StandardWeightHint
	}
	if record.DisplayColor == "" && !displayColor.IsEmpty() {
		record.DisplayColor = displayColor.String()
	}
	if record.Retired && record.Quantity.IsPositive() {
		record.Unretire()
	}

	if err := store.Save(ctx, record); err != nil {
		return nil, err
	}
	if err := store.RecordMovement(ctx, models.StockMovement{
		StockID:   record.ID,
		Kind:      models.MovementIntake,
		Quantity:  in.Weight,
		Balance:   record.Quantity,
		Reference: in.Reference,
	}); err != nil {
		return nil, err
	}

	l.logger.Debug("Fabric intake recorded",
		zap.String("stock_id", record.ID),
		zap.String("fabric_name", record.FabricName),
		zap.String("color", record.Color),
		zap.String("weight", in.Weight.String()),
	)

	return record, nil
}

func (l *Ledger) createFromIntake(ctx context.Context, store StockStore, in IntakeInput, displayColor metadata.DisplayColor) (*models.StockRecord, error) {
	standardWeight := in.Weight
	if in.StandardWeightHint != nil && !in.StandardWeightHint.IsZero() {
		standardWeight = *in.StandardWeightHint
	}
	if displayColor.IsEmpty() {
		displayColor = metadata.DefaultDisplayColor
	}

	record := &models.StockRecord{
		ID:                 uuid.NewString(),
		FabricName:         in.FabricName,
		Color:              in.Color,
		Quantity:           in.Weight,
		StandardUnitWeight: standardWeight,
		DisplayColor:       displayColor.String(),
		LastUpdated:        l.now(),
	}

	if err := store.Create(ctx, record); err != nil {
		var unique *custom_error.UniqueViolationError
		if errors.As(err, &unique) {
			// Another writer created the key first; retrying turns this into an update.
			return nil, fmt.Errorf("stock %s created concurrently: %w", in.Key(), ErrVersionConflict)
		}
		return nil, err
	}
	if err := store.RecordMovement(ctx, models.StockMovement{
		StockID:   record.ID,
		Kind:      models.MovementIntake,
		Quantity:  in.Weight,
		Balance:   record.Quantity,
		Reference: in.Reference,
	}); err != nil {
		return nil, err
	}

	l.logger.Info("Stock record created",
		zap.String("stock_id", record.ID),
		zap.String("fabric_name", record.FabricName),
		zap.String("color", record.Color),
	)

	return record, nil
}
