package stocks

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"garment/internal/ledger"
	"garment/pkg/models"
)

const (
	fabricSheet = "Fabric types"
	colorSheet  = "Colors"
	recordSheet = "Stock records"
)

// ExportReport renders the stock report and the underlying records as an xlsx
// workbook.
func ExportReport(report ledger.Report, records []models.StockRecord, generatedAt time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", fabricSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, sheet := range []string{colorSheet, recordSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	fabricRows := make([][]interface{}, 0, len(report.ByFabricType))
	for _, fabric := range report.ByFabricType {
		fabricRows = append(fabricRows, []interface{}{
			fabric.Name, fabric.ActiveQuantity.InexactFloat64(), fabric.TotalQuantity.InexactFloat64(), fabric.Records,
		})
	}
	colorRows := make([][]interface{}, 0, len(report.ByColor))
	for _, color := range report.ByColor {
		colorRows = append(colorRows, []interface{}{
			color.Name, color.DisplayColor, color.ActiveQuantity.InexactFloat64(),
		})
	}
	recordRows := make([][]interface{}, 0, len(records))
	for _, record := range records {
		recordRows = append(recordRows, []interface{}{
			record.ID, record.FabricName, record.Color, record.Quantity.InexactFloat64(),
			record.StandardUnitWeight.InexactFloat64(), record.DisplayColor, record.Retired,
			record.LastUpdated.Format(time.DateTime),
		})
	}

	sheets := []struct {
		name    string
		headers []interface{}
		rows    [][]interface{}
	}{
		{fabricSheet, []interface{}{"Fabric", "Active quantity", "Total quantity", "Records"}, fabricRows},
		{colorSheet, []interface{}{"Color", "Display color", "Active quantity"}, colorRows},
		{recordSheet, []interface{}{"ID", "Fabric", "Color", "Quantity", "Standard weight", "Display color", "Retired", "Last updated"}, recordRows},
	}

	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, headerStyle, sheet.headers, sheet.rows); err != nil {
			return nil, err
		}
	}
	if err := stampGenerated(f, fabricSheet, generatedAt); err != nil {
		return nil, err
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return buffer, nil
}

func stampGenerated(f *excelize.File, sheet string, generatedAt time.Time) error {
	if err := f.SetCellValue(sheet, "F1", fmt.Sprintf("Generated: %s", generatedAt.Format(time.DateTime))); err != nil {
		return fmt.Errorf("failed to write generation time to %s: %w", sheet, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, headers []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}

	return nil
}
