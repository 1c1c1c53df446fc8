package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"garment/pkg/models"
)

type ReportFilter struct {
	IncludeRetired bool `form:"include_retired"`
}

type FabricTypeSummary struct {
	Name           string          `json:"name"`
	ActiveQuantity decimal.Decimal `json:"active_quantity"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
	Records        int             `json:"records"`
}

type ColorSummary struct {
	Name           string          `json:"name"`
	DisplayColor   string          `json:"display_color"`
	ActiveQuantity decimal.Decimal `json:"active_quantity"`
}

type Report struct {
	ByFabricType []FabricTypeSummary `json:"by_fabric_type"`
	ByColor      []ColorSummary      `json:"by_color"`
}

// Summarize aggregates stock per fabric type and per color. Retired records never
// count as active; with IncludeRetired they are part of the totals.
func Summarize(records []models.StockRecord, filter ReportFilter) Report {
	fabrics := map[string]*FabricTypeSummary{}
	colors := map[string]*ColorSummary{}

	for _, record := range records {
		if record.Retired && !filter.IncludeRetired {
			continue
		}

		fabric, ok := fabrics[record.FabricName]
		if !ok {
			fabric = &FabricTypeSummary{Name: record.FabricName}
			fabrics[record.FabricName] = fabric
		}
		color, ok := colors[record.Color]
		if !ok {
			color = &ColorSummary{Name: record.Color, DisplayColor: record.DisplayColor}
			colors[record.Color] = color
		}

		fabric.Records++
		fabric.TotalQuantity = fabric.TotalQuantity.Add(record.Quantity)
		if !record.Retired {
			fabric.ActiveQuantity = fabric.ActiveQuantity.Add(record.Quantity)
			color.ActiveQuantity = color.ActiveQuantity.Add(record.Quantity)
		}
	}

	report := Report{
		ByFabricType: make([]FabricTypeSummary, 0, len(fabrics)),
		ByColor:      make([]ColorSummary, 0, len(colors)),
	}
	for _, fabric := range fabrics {
		report.ByFabricType = append(report.ByFabricType, *fabric)
	}
	for _, color := range colors {
		report.ByColor = append(report.ByColor, *color)
	}
	sort.Slice(report.ByFabricType, func(i, j int) bool {
		return report.ByFabricType[i].Name < report.ByFabricType[j].Name
	})
	sort.Slice(report.ByColor, func(i, j int) bool {
		return report.ByColor[i].Name < report.ByColor[j].Name
	})

	return report
}
