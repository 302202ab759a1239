package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/deliverycalc/quote-gateway/models"
	"github.com/deliverycalc/quote-gateway/repository"
)

// ExportFlow renders the current catalog as a downloadable workbook.
type ExportFlow interface {
	ExportCatalog(ctx context.Context) (string, []byte, error)
}

// ExportFlowImpl implements the catalog export flow
type ExportFlowImpl struct {
	repo repository.CatalogRepository
}

// NewExportFlow creates a new export flow
func NewExportFlow(repo repository.CatalogRepository) ExportFlow {
	return &ExportFlowImpl{repo: repo}
}

// ExportCatalog builds an Excel workbook with one factories sheet and one
// sheet per vehicle's tariff table.
func (f *ExportFlowImpl) ExportCatalog(ctx context.Context) (string, []byte, error) {
	snap := f.repo.Snapshot(ctx)
	if snap == nil {
		return "", nil, NewBusinessError("CATALOG_NOT_LOADED", "Catalog has not been loaded yet", ErrCatalogNotLoaded)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	factoriesSheet := "Factories"
	xl.SetSheetName(xl.GetSheetName(0), factoriesSheet)
	header := []string{"factory", "contact", "lat", "lon", "category", "subtype", "weight_per_item", "max_per_trip", "special_threshold", "price"}
	_ = xl.SetSheetRow(factoriesSheet, "A1", &header)

	ri := 2
	for _, factory := range snap.Factories {
		for _, p := range factory.SortedProducts() {
			record := []string{
				factory.Name,
				factory.Contact,
				formatFloat(factory.Lat),
				formatFloat(factory.Lon),
				p.Category,
				p.Subtype,
				formatFloat(p.WeightPerItem),
				strconv.Itoa(p.MaxPerTrip),
				formatFloat(p.SpecialThreshold),
				formatFloat(p.Price),
			}
			cellRef, _ := excelize.CoordinatesToCellName(1, ri)
			_ = xl.SetSheetRow(factoriesSheet, cellRef, &record)
			ri++
		}
	}

	usedNames := map[string]bool{factoriesSheet: true}
	for _, group := range models.GroupTariffsByVehicle(snap.Tariffs) {
		baseName := sanitizeSheetName(group.VehicleName)
		name := baseName
		idx := 1
		for usedNames[name] {
			idx++
			name = truncateSheetName(fmt.Sprintf("%s_%d", baseName, idx))
		}
		usedNames[name] = true
		_, _ = xl.NewSheet(name)

		tariffHeader := []string{"vehicle", "capacity_ton", "tag", "distance_min", "distance_max", "price", "per_km", "notes"}
		_ = xl.SetSheetRow(name, "A1", &tariffHeader)
		for i, row := range group.Rows {
			record := []string{
				row.VehicleName,
				formatFloat(row.CapacityTon),
				row.Tag,
				formatFloat(row.DistanceMin),
				formatFloat(row.DistanceMax),
				formatFloat(row.Price),
				formatFloat(row.PerKm),
				row.DisplayNotes(),
			}
			cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
			_ = xl.SetSheetRow(name, cellRef, &record)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return "catalog_export.xlsx", buf.Bytes(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain: : \\ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := replacer.Replace(name)
	return truncateSheetName(strings.TrimSpace(safe))
}

func truncateSheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	if name == "" {
		return "Sheet"
	}
	return name
}
