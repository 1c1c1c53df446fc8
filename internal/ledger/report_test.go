package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garment/pkg/models"
)

func TestSummarize_EmptyInput(t *testing.T) {
	report := Summarize(nil, ReportFilter{})

	assert.NotNil(t, report.ByFabricType)
	assert.NotNil(t, report.ByColor)
	assert.Empty(t, report.ByFabricType)
	assert.Empty(t, report.ByColor)
}

func TestSummarize_GroupsByFabricAndColor(t *testing.T) {
	records := []models.StockRecord{
		{FabricName: "Cotton", Color: "Red", Quantity: d("10")},
		{FabricName: "Cotton", Color: "Blue", Quantity: d("5")},
		{FabricName: "Silk", Color: "Red", Quantity: d("2.5")},
		{FabricName: "Silk", Color: "Green", Quantity: d("0"), Retired: true},
	}

	t.Run("active only", func(t *testing.T) {
		report := Summarize(records, ReportFilter{})

		require.Len(t, report.ByFabricType, 2)
		assert.Equal(t, "Cotton", report.ByFabricType[0].Name)
		assert.True(t, d("15").Equal(report.ByFabricType[0].ActiveQuantity))
		assert.True(t, d("15").Equal(report.ByFabricType[0].TotalQuantity))
		assert.Equal(t, 1, report.ByFabricType[1].Records)

		require.Len(t, report.ByColor, 2)
		assert.Equal(t, "Blue", report.ByColor[0].Name)
		assert.Equal(t, "Red", report.ByColor[1].Name)
		assert.True(t, d("12.5").Equal(report.ByColor[1].ActiveQuantity))
	})

	t.Run("including retired", func(t *testing.T) {
		report := Summarize(records, ReportFilter{IncludeRetired: true})

		require.Len(t, report.ByFabricType, 2)
		silk := report.ByFabricType[1]
		assert.Equal(t, 2, silk.Records)
		assert.True(t, d("2.5").Equal(silk.ActiveQuantity))

		require.Len(t, report.ByColor, 3)
		assert.Equal(t, "Green", report.ByColor[1].Name)
		assert.True(t, report.ByColor[1].ActiveQuantity.IsZero())
	})
}

func TestSummarize_RetiredWithLeftoverCountsInTotalOnly(t *testing.T) {
	records := []models.StockRecord{
		{FabricName: "Denim", Color: "Black", Quantity: d("3"), Retired: true},
		{FabricName: "Denim", Color: "Black", Quantity: d("7")},
	}

	report := Summarize(records, ReportFilter{IncludeRetired: true})

	require.Len(t, report.ByFabricType, 1)
	assert.True(t, d("7").Equal(report.ByFabricType[0].ActiveQuantity))
	assert.True(t, d("10").Equal(report.ByFabricType[0].TotalQuantity))
}
