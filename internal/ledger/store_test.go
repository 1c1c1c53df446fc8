package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	custom_error "garment/pkg/errors"
	"garment/pkg/models"
)

// memoryStore is an in-memory StockStore. Records are copied in and out so a
// failed operation never leaks half-applied state.
type memoryStore struct {
	mu        sync.Mutex
	records   map[string]models.StockRecord
	movements []models.StockMovement
	conflicts int
	saves     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]models.StockRecord{}}
}

func (m *memoryStore) FindByKey(_ context.Context, key models.StockKey) (*models.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.Key() == key {
			r := record
			return &r, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *memoryStore) FindByID(_ context.Context, id string) (*models.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &record, nil
}

func (m *memoryStore) Create(_ context.Context, record *models.StockRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.Key() == record.Key() {
			return custom_error.WrapDBError("duplicate stock key", "23505")
		}
	}
	record.Version = 1
	m.records[record.ID] = *record
	return nil
}

func (m *memoryStore) Save(_ context.Context, record *models.StockRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflicts > 0 {
		m.conflicts--
		return fmt.Errorf("save %s: %w", record.ID, ErrVersionConflict)
	}
	stored, ok := m.records[record.ID]
	if !ok || stored.Version != record.Version {
		return ErrVersionConflict
	}
	if record.Quantity.IsNegative() {
		return custom_error.WrapDBError("quantity below zero", "23514")
	}
	record.Version++
	m.records[record.ID] = *record
	m.saves++
	return nil
}

func (m *memoryStore) RecordMovement(_ context.Context, movement models.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, movement)
	return nil
}

func (m *memoryStore) get(t *testing.T, fabric, color string) models.StockRecord {
	t.Helper()
	record, err := m.FindByKey(context.Background(), models.StockKey{FabricName: fabric, Color: color})
	require.NoError(t, err)
	return *record
}

// snapshot copies the store so tests can compare state before and after a failure.
func (m *memoryStore) snapshot() map[string]models.StockRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]models.StockRecord, len(m.records))
	for id, record := range m.records {
		copied[id] = record
	}
	return copied
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, ...string) (func(), error) {
	return func() {}, nil
}

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestLedger() *Ledger {
	return New(zap.NewNop(), noopLocker{}).WithClock(func() time.Time { return fixedNow })
}

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}
