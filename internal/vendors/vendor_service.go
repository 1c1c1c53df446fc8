package vendors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"

	"garment/internal/ledger"
	"garment/internal/repository"
	"garment/internal/stocks"
	"garment/pkg/models"
)

type VendorService struct {
	repository *repository.Repository
	vendors    *VendorRepository
	ledger     *ledger.Ledger
	logger     *zap.Logger
}

func NewService(r *repository.Repository, l *ledger.Ledger, logger *zap.Logger) *VendorService {
	return &VendorService{
		repository: r,
		vendors:    NewRepository(r),
		ledger:     l,
		logger:     logger,
	}
}

// CreateVendor registers a delivery and takes every fabric line into stock in
// a single transaction.
func (s *VendorService) CreateVendor(ctx context.Context, req models.VendorRequest) (*models.Vendor, error) {
	keys := make([]models.StockKey, 0, len(req.Fabrics))
	for _, line := range req.Fabrics {
		keys = append(keys, models.StockKey{FabricName: line.FabricName, Color: line.Color})
	}

	deliveredAt := time.Now()
	if req.DeliveredAt != nil {
		deliveredAt = *req.DeliveredAt
	}

	var vendor *models.Vendor
	err := s.ledger.Exclusive(ctx, keys, func(ctx context.Context) error {
		vendor = &models.Vendor{
			Name:        req.Name,
			BillNumber:  req.BillNumber,
			Phone:       req.Phone,
			DeliveredAt: deliveredAt,
			Fabrics:     make([]models.VendorFabric, 0, len(req.Fabrics)),
		}

		return s.repository.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
			if err := s.vendors.InsertVendor(ctx, tx, vendor); err != nil {
				return err
			}

			store := stocks.NewTxStore(tx)
			for i, line := range req.Fabrics {
				fabric, err := s.intakeLine(ctx, tx, store, vendor.ID, line)
				if err != nil {
					var validation *ledger.ValidationError
					if errors.As(err, &validation) {
						validation.Property = fmt.Sprintf("fabrics[%d].%s", i, validation.Property)
					}
					return err
				}
				vendor.Fabrics = append(vendor.Fabrics, *fabric)
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vendor delivery registered",
		zap.Int("vendor_id", vendor.ID),
		zap.String("vendor", vendor.Name),
		zap.Int("fabrics", len(vendor.Fabrics)),
	)

	return vendor, nil
}

func (s *VendorService) intakeLine(ctx context.Context, tx *goqu.TxDatabase, store ledger.StockStore, vendorID int, line models.VendorFabricRequest) (*models.VendorFabric, error) {
	record, err := s.ledger.Intake(ctx, store, ledger.IntakeInput{
		FabricName:         line.FabricName,
		Color:              line.Color,
		Weight:             line.Weight,
		StandardWeightHint: line.StandardWeight,
		DisplayColorHint:   line.DisplayColor,
		Reference:          fmt.Sprintf("vendor:%d", vendorID),
	})
	if err != nil {
		return nil, err
	}

	fabric := &models.VendorFabric{
		VendorID:       vendorID,
		StockID:        record.ID,
		FabricName:     record.FabricName,
		Color:          record.Color,
		Weight:         line.Weight,
		StandardWeight: line.Weight,
		DisplayColor:   record.DisplayColor,
	}
	if line.StandardWeight != nil {
		fabric.StandardWeight = *line.StandardWeight
	}

	if err := s.vendors.InsertVendorFabric(ctx, tx, fabric); err != nil {
		return nil, err
	}

	return fabric, nil
}

func (s *VendorService) GetVendors(ctx context.Context) ([]models.Vendor, error) {
	return s.vendors.GetVendors(ctx)
}

func (s *VendorService) GetVendor(ctx context.Context, id int) (*models.Vendor, error) {
	return s.vendors.GetVendor(ctx, id)
}

// UpdateVendor edits delivery metadata only; fabric lines are part of the stock
// history and cannot be changed.
func (s *VendorService) UpdateVendor(ctx context.Context, id int, req models.PatchVendorRequest) (*models.Vendor, error) {
	changes := goqu.Record{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, &ledger.ValidationError{Property: "name", Message: "must not be empty"}
		}
		changes["name"] = *req.Name
	}
	if req.BillNumber != nil {
		changes["bill_number"] = *req.BillNumber
	}
	if req.Phone != nil {
		changes["phone"] = *req.Phone
	}

	if len(changes) > 0 {
		if err := s.vendors.UpdateVendor(ctx, id, changes); err != nil {
			return nil, err
		}
	}

	return s.vendors.GetVendor(ctx, id)
}
