package ledger

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"garment/pkg/models"
)

const maxAttempts = 3

// quantityScale is the number of decimal places stored for weights.
const quantityScale = 3

type Ledger struct {
	logger   *zap.Logger
	locker   Locker
	validate *validator.Validate
	now      func() time.Time
}

func New(logger *zap.Logger, locker Locker) *Ledger {
	validate := validator.New()
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = validate.RegisterValidation("qty", withinScale)

	return &Ledger{
		logger:   logger,
		locker:   locker,
		validate: validate,
		now:      time.Now,
	}
}

// WithClock replaces the time source, used by tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Exclusive runs fn while holding the locks of every key. fn is retried when it
// fails with ErrVersionConflict, so it must open its own transaction.
func (l *Ledger) Exclusive(ctx context.Context, keys []models.StockKey, fn func(ctx context.Context) error) error {
	unlock, err := l.locker.Lock(ctx, lockKeys(keys)...)
	if err != nil {
		return fmt.Errorf("failed to lock stock records: %w", err)
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || !errors.Is(err, ErrVersionConflict) || attempt == maxAttempts {
			return err
		}
		l.logger.Info("Retrying ledger operation after version conflict", zap.Int("attempt", attempt))
	}
}

func (l *Ledger) validateInput(input interface{}) error {
	err := l.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return &ValidationError{
			Property: fe.Namespace(),
			Message:  fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
		}
	}

	return &ValidationError{Message: err.Error()}
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// withinScale rejects weights with more decimal places than the database keeps.
// The custom type func hands validators a float64, so the decimal is read from
// the parent struct.
func withinScale(fl validator.FieldLevel) bool {
	field := reflect.Indirect(fl.Parent()).FieldByName(fl.StructFieldName())
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return true
	}
	return d.Equal(d.Truncate(quantityScale))
}

func lockKeys(keys []models.StockKey) []string {
	seen := make(map[string]bool, len(keys))
	result := make([]string, 0, len(keys))
	for _, key := range keys {
		k := "stock:" + key.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// workset caches the records loaded during one operation, so several roles
// on the same record mutate a single copy that is persisted once.
type workset struct {
	store   StockStore
	records map[string]*models.StockRecord
	created map[string]bool
	dirty   map[string]bool
	moves   []models.StockMovement
}

func newWorkset(store StockStore) *workset {
	return &workset{
		store:   store,
		records: map[string]*models.StockRecord{},
		created: map[string]bool{},
		dirty:   map[string]bool{},
	}
}

func (w *workset) byKey(ctx context.Context, key models.StockKey) (*models.StockRecord, error) {
	for _, record := range w.records {
		if record.Key() == key {
			return record, nil
		}
	}

	record, err := w.store.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	w.records[record.ID] = record
	return record, nil
}

// byReference prefers the stable id and falls back to the business key.
func (w *workset) byReference(ctx context.Context, id string, key models.StockKey) (*models.StockRecord, error) {
	if id != "" {
		if record, ok := w.records[id]; ok {
			return record, nil
		}
		record, err := w.store.FindByID(ctx, id)
		if err == nil {
			w.records[record.ID] = record
			return record, nil
		}
		if !errors.Is(err, ErrRecordNotFound) {
			return nil, err
		}
	}
	return w.byKey(ctx, key)
}

func (w *workset) add(record *models.StockRecord) {
	w.records[record.ID] = record
	w.created[record.ID] = true
	w.dirty[record.ID] = true
}

func (w *workset) touch(record *models.StockRecord, move models.StockMovement) {
	w.dirty[record.ID] = true
	move.StockID = record.ID
	move.Balance = record.Quantity
	w.moves = append(w.moves, move)
}

func (w *workset) flush(ctx context.Context) error {
	ids := make([]string, 0, len(w.dirty))
	for id := range w.dirty {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		record := w.records[id]
		if w.created[id] {
			if err := w.store.Create(ctx, record); err != nil {
				return err
			}
			continue
		}
		if err := w.store.Save(ctx, record); err != nil {
			return err
		}
	}

	for _, move := range w.moves {
		if err := w.store.RecordMovement(ctx, move); err != nil {
			return err
		}
	}
	return nil
}
