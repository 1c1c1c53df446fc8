package vendors

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"garment/internal/ledger"
	"garment/internal/repository"
	custom_error "garment/pkg/errors"
	"garment/pkg/models"
)

var vendorColumns = []interface{}{"id", "name", "bill_number", "phone", "delivered_at", "created_at"}

type VendorRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *VendorRepository {
	return &VendorRepository{repository: r}
}

func (r *VendorRepository) InsertVendor(ctx context.Context, tx *goqu.TxDatabase, vendor *models.Vendor) error {
	query := tx.Insert("vendors").
		Rows(goqu.Record{
			"name":         vendor.Name,
			"bill_number":  vendor.BillNumber,
			"phone":        vendor.Phone,
			"delivered_at": vendor.DeliveredAt,
		}).
		Returning("id", "created_at")

	if _, err := query.Executor().ScanStructContext(ctx, vendor); err != nil {
		return custom_error.FromPQ(err, "failed to insert vendor")
	}

	return nil
}

func (r *VendorRepository) InsertVendorFabric(ctx context.Context, tx *goqu.TxDatabase, fabric *models.VendorFabric) error {
	query := tx.Insert("vendor_fabrics").
		Rows(goqu.Record{
			"vendor_id":       fabric.VendorID,
			"stock_id":        fabric.StockID,
			"fabric_name":     fabric.FabricName,
			"color":           fabric.Color,
			"weight":          fabric.Weight,
			"standard_weight": fabric.StandardWeight,
			"display_color":   fabric.DisplayColor,
		}).
		Returning("id")

	if _, err := query.Executor().ScanValContext(ctx, &fabric.ID); err != nil {
		return custom_error.FromPQ(err, fmt.Sprintf("failed to insert fabric line of vendor %d", fabric.VendorID))
	}

	return nil
}

func (r *VendorRepository) GetVendors(ctx context.Context) ([]models.Vendor, error) {
	vendors := []models.Vendor{}
	err := r.repository.GoquDBWrapper.From("vendors").
		Select(vendorColumns...).
		Order(goqu.I("delivered_at").Desc(), goqu.I("id").Desc()).
		Executor().
		ScanStructsContext(ctx, &vendors)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return vendors, nil
}

func (r *VendorRepository) GetVendor(ctx context.Context, id int) (*models.Vendor, error) {
	var vendor models.Vendor
	found, err := r.repository.GoquDBWrapper.From("vendors").
		Select(vendorColumns...).
		Where(goqu.Ex{"id": id}).
		Executor().
		ScanStructContext(ctx, &vendor)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	if !found {
		return nil, &ledger.NotFoundError{Resource: "vendor", Key: fmt.Sprint(id)}
	}

	vendor.Fabrics = []models.VendorFabric{}
	err = r.repository.GoquDBWrapper.From("vendor_fabrics").
		Select("id", "vendor_id", "stock_id", "fabric_name", "color", "weight", "standard_weight", "display_color").
		Where(goqu.Ex{"vendor_id": id}).
		Order(goqu.I("id").Asc()).
		Executor().
		ScanStructsContext(ctx, &vendor.Fabrics)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fabrics of vendor %d: %w", id, err)
	}

	return &vendor, nil
}

func (r *VendorRepository) UpdateVendor(ctx context.Context, id int, changes goqu.Record) error {
	result, err := r.repository.GoquDBWrapper.Update("vendors").
		Set(changes).
		Where(goqu.Ex{"id": id}).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return custom_error.FromPQ(err, fmt.Sprintf("failed to update vendor %d", id))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &ledger.NotFoundError{Resource: "vendor", Key: fmt.Sprint(id)}
	}

	return nil
}
