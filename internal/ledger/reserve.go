package ledger

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"garment/pkg/models"
)

type RoleReservation struct {
	RoleNumber    int
	Color         string          `validate:"required"`
	PlannedWeight decimal.Decimal `validate:"gt=0,qty"`
}

type ReserveInput struct {
	FabricName string `validate:"required"`
	Reference  string
	Roles      []RoleReservation `validate:"required,min=1,dive"`
}

func (in ReserveInput) Keys() []models.StockKey {
	keys := make([]models.StockKey, 0, len(in.Roles))
	for _, role := range in.Roles {
		keys = append(keys, models.StockKey{FabricName: in.FabricName, Color: role.Color})
	}
	return keys
}

// Reservation tells which stock record a role drew from.
type Reservation struct {
	RoleNumber int             `json:"role_number"`
	StockID    string          `json:"stock_id"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// Reserve takes the planned weight of every role out of stock. All roles are
// checked before the first decrement, so a failing batch leaves stock untouched.
// Roles sharing a color are checked against their combined weight.
func (l *Ledger) Reserve(ctx context.Context, store StockStore, in ReserveInput) ([]Reservation, error) {
	if err := l.validateInput(in); err != nil {
		return nil, err
	}

	requested := map[models.StockKey]decimal.Decimal{}
	for _, role := range in.Roles {
		key := models.StockKey{FabricName: in.FabricName, Color: role.Color}
		requested[key] = requested[key].Add(role.PlannedWeight)
	}

	keys := make([]models.StockKey, 0, len(requested))
	for key := range requested {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	ws := newWorkset(store)
	for _, key := range keys {
		record, err := ws.byKey(ctx, key)
		if errors.Is(err, ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "stock record", Key: key.String()}
		}
		if err != nil {
			return nil, err
		}
		if record.Quantity.LessThan(requested[key]) {
			return nil, &InsufficientStockError{
				FabricName: key.FabricName,
				Color:      key.Color,
				Available:  record.Quantity,
				Requested:  requested[key],
			}
		}
	}

	now := l.now()
	reservations := make([]Reservation, 0, len(in.Roles))
	for _, role := range in.Roles {
		record, err := ws.byKey(ctx, models.StockKey{FabricName: in.FabricName, Color: role.Color})
		if err != nil {
			return nil, err
		}

		record.Quantity = record.Quantity.Sub(role.PlannedWeight)
		record.LastUpdated = now
		if !record.Quantity.IsPositive() {
			record.Retire(now)
		}
		ws.touch(record, models.StockMovement{
			Kind:      models.MovementReserve,
			Quantity:  role.PlannedWeight.Neg(),
			Reference: in.Reference,
		})

		reservations = append(reservations, Reservation{
			RoleNumber: role.RoleNumber,
			StockID:    record.ID,
			Remaining:  record.Quantity,
		})
	}

	if err := ws.flush(ctx); err != nil {
		return nil, err
	}

	l.logger.Info("Stock reserved for cutting",
		zap.String("reference", in.Reference),
		zap.String("fabric_name", in.FabricName),
		zap.Int("roles", len(in.Roles)),
	)

	return reservations, nil
}
