package businessflow

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/deliverycalc/quote-gateway/app/dto"
	"github.com/deliverycalc/quote-gateway/app/services"
	"github.com/deliverycalc/quote-gateway/models"
	"github.com/deliverycalc/quote-gateway/repository"
	"github.com/deliverycalc/quote-gateway/utils"
)

// CatalogFlow owns the catalog snapshot lifecycle and its read views.
type CatalogFlow interface {
	Refresh(ctx context.Context) (*dto.CatalogStatusResponse, error)
	Status(ctx context.Context) *dto.CatalogStatusResponse
	Categories(ctx context.Context) (*dto.CategoriesResponse, error)
	Factories(ctx context.Context) ([]dto.FactoryGroup, error)
	Tariffs(ctx context.Context) ([]dto.TariffGroupView, error)
	SpecialVehicles(ctx context.Context) (*dto.SpecialVehiclesResponse, error)
	Reload(ctx context.Context) (*dto.ReloadResponse, error)
}

// CatalogFlowImpl implements the catalog business flow
type CatalogFlowImpl struct {
	catalogClient services.CatalogClient
	quoteClient   services.QuoteClient
	repo          repository.CatalogRepository
}

// NewCatalogFlow creates a new catalog flow
func NewCatalogFlow(
	catalogClient services.CatalogClient,
	quoteClient services.QuoteClient,
	repo repository.CatalogRepository,
) CatalogFlow {
	return &CatalogFlowImpl{
		catalogClient: catalogClient,
		quoteClient:   quoteClient,
		repo:          repo,
	}
}

// Refresh fetches all catalog sections concurrently and swaps in a fresh
// snapshot. A failed section loads empty and is recorded in the snapshot;
// the sections that succeeded still replace the old data.
func (f *CatalogFlowImpl) Refresh(ctx context.Context) (*dto.CatalogStatusResponse, error) {
	snap := &models.CatalogSnapshot{
		Categories: map[string][]string{},
		Factories:  []models.Factory{},
		Tariffs:    []models.TariffRow{},
		LoadedAt:   utils.UTCNow(),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	fail := func(section string, err error) {
		mu.Lock()
		snap.Errors = append(snap.Errors, fmt.Sprintf("%s: %v", section, err))
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		cats, err := f.catalogClient.GetCategories(ctx)
		if err != nil {
			fail("categories", err)
			return
		}
		for _, subtypes := range cats {
			sort.Strings(subtypes)
		}
		mu.Lock()
		snap.Categories = cats
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		raw, err := f.catalogClient.GetFactories(ctx)
		if err != nil {
			fail("factories", err)
			return
		}
		mu.Lock()
		snap.Factories = models.NormalizeFactoryRecords(raw)
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		raw, err := f.catalogClient.GetTariffs(ctx)
		if err != nil {
			fail("tariffs", err)
			return
		}
		mu.Lock()
		snap.Tariffs = models.NormalizeTariffRecords(raw)
		mu.Unlock()
	}()
	wg.Wait()

	if err := f.repo.Replace(ctx, snap); err != nil {
		return nil, NewBusinessError("CATALOG_STORE_FAILED", "Failed to store catalog snapshot", err)
	}
	return statusOf(snap), nil
}

// Status reports the current snapshot without touching upstream.
func (f *CatalogFlowImpl) Status(ctx context.Context) *dto.CatalogStatusResponse {
	return statusOf(f.repo.Snapshot(ctx))
}

func (f *CatalogFlowImpl) Categories(ctx context.Context) (*dto.CategoriesResponse, error) {
	snap, err := f.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CategoriesResponse{Categories: snap.Categories}, nil
}

// Factories returns the factory groups with products sorted by subtype.
func (f *CatalogFlowImpl) Factories(ctx context.Context) ([]dto.FactoryGroup, error) {
	snap, err := f.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FactoryGroup, 0, len(snap.Factories))
	for _, fa := range snap.Factories {
		out = append(out, dto.FactoryGroup{
			Name:     fa.Name,
			Lat:      fa.Lat,
			Lon:      fa.Lon,
			Contact:  fa.Contact,
			Products: fa.SortedProducts(),
		})
	}
	return out, nil
}

// Tariffs returns per-vehicle tariff groups with bands sorted by distance
// and overflow bands flagged.
func (f *CatalogFlowImpl) Tariffs(ctx context.Context) ([]dto.TariffGroupView, error) {
	snap, err := f.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	groups := models.GroupTariffsByVehicle(snap.Tariffs)
	out := make([]dto.TariffGroupView, 0, len(groups))
	for _, g := range groups {
		view := dto.TariffGroupView{
			VehicleName: g.VehicleName,
			CapacityTon: g.CapacityTon,
			Tag:         g.Tag,
			Rows:        make([]dto.TariffRowView, 0, len(g.Rows)),
		}
		for _, row := range g.Rows {
			view.Rows = append(view.Rows, dto.TariffRowView{
				DistanceMin:    row.DistanceMin,
				DistanceMax:    row.DistanceMax,
				Price:          row.Price,
				PerKm:          row.PerKm,
				Notes:          row.DisplayNotes(),
				IsOverflowBand: row.IsOverflowBand(),
			})
		}
		out = append(out, view)
	}
	return out, nil
}

func (f *CatalogFlowImpl) SpecialVehicles(ctx context.Context) (*dto.SpecialVehiclesResponse, error) {
	snap, err := f.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SpecialVehiclesResponse{Vehicles: models.SpecialVehicles(snap.Tariffs)}, nil
}

// Reload asks the upstream service to reload its data files, then refreshes
// the local snapshot from the reloaded data.
func (f *CatalogFlowImpl) Reload(ctx context.Context) (*dto.ReloadResponse, error) {
	result, err := f.quoteClient.TriggerReload(ctx)
	if err != nil {
		return nil, NewBusinessError("UPSTREAM_RELOAD_FAILED", "Upstream data reload failed", err)
	}
	status, err := f.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ReloadResponse{
		UpstreamMessage: result.Message,
		Factories:       result.Factories,
		Tariffs:         result.Tariffs,
		Catalog:         *status,
	}, nil
}

func (f *CatalogFlowImpl) snapshot(ctx context.Context) (*models.CatalogSnapshot, error) {
	snap := f.repo.Snapshot(ctx)
	if snap == nil {
		return nil, NewBusinessError("CATALOG_NOT_LOADED", "Catalog has not been loaded yet", ErrCatalogNotLoaded)
	}
	return snap, nil
}

func statusOf(snap *models.CatalogSnapshot) *dto.CatalogStatusResponse {
	if snap == nil {
		return &dto.CatalogStatusResponse{}
	}
	return &dto.CatalogStatusResponse{
		Loaded:       true,
		Degraded:     snap.Degraded(),
		Factories:    len(snap.Factories),
		TariffRows:   len(snap.Tariffs),
		Categories:   len(snap.Categories),
		LoadedAt:     snap.LoadedAt,
		LoadMessages: snap.Errors,
	}
}
