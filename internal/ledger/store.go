package ledger

import (
	"context"

	"garment/pkg/models"
)

// StockStore is the transactional view of the stock records a ledger operation
// works on. Implementations lock rows returned by the Find methods until the
// surrounding transaction ends.
type StockStore interface {
	// FindByKey returns ErrRecordNotFound when no record exists for the key.
	FindByKey(ctx context.Context, key models.StockKey) (*models.StockRecord, error)
	// FindByID returns ErrRecordNotFound when no record has the id.
	FindByID(ctx context.Context, id string) (*models.StockRecord, error)
	Create(ctx context.Context, record *models.StockRecord) error
	// Save persists the record when its Version still matches the stored one and
	// increments Version. A stale record yields ErrVersionConflict.
	Save(ctx context.Context, record *models.StockRecord) error
	RecordMovement(ctx context.Context, movement models.StockMovement) error
}

// Locker serializes ledger operations touching the same stock keys.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}
