package businessflow

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/deliverycalc/quote-gateway/models"
)

func TestExportCatalog(t *testing.T) {
	repo := &fakeCatalogRepo{snap: &models.CatalogSnapshot{
		Factories: []models.Factory{
			{Name: "Завод А", Contact: "+7 900", Lat: 55.1, Lon: 37.2, Products: []models.Product{
				{Category: "sand", Subtype: "river", Price: 100},
			}},
		},
		Tariffs: []models.TariffRow{
			{VehicleName: "КамАЗ", CapacityTon: 10, DistanceMin: 0, DistanceMax: 50, Price: 10000},
			{VehicleName: "Кран/Манипулятор", Tag: "special"},
		},
	}}
	flow := NewExportFlow(repo)

	filename, data, err := flow.ExportCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "catalog_export.xlsx", filename)

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	sheets := xl.GetSheetList()
	assert.Contains(t, sheets, "Factories")
	assert.Contains(t, sheets, "КамАЗ")
	// slash is illegal in sheet names and must be replaced
	assert.Contains(t, sheets, "Кран_Манипулятор")

	name, err := xl.GetCellValue("Factories", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Завод А", name)

	price, err := xl.GetCellValue("КамАЗ", "F2")
	require.NoError(t, err)
	assert.Equal(t, "10000", price)
}

func TestExportCatalogWithoutSnapshot(t *testing.T) {
	flow := NewExportFlow(&fakeCatalogRepo{})

	_, _, err := flow.ExportCatalog(context.Background())
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)
}
