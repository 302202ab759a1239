package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverycalc/quote-gateway/models"
)

type fakeCatalogClient struct {
	categories    map[string][]string
	factories     []models.RawRecord
	tariffs       []models.RawRecord
	categoriesErr error
	factoriesErr  error
	tariffsErr    error
}

func (c *fakeCatalogClient) GetCategories(context.Context) (map[string][]string, error) {
	return c.categories, c.categoriesErr
}

func (c *fakeCatalogClient) GetFactories(context.Context) ([]models.RawRecord, error) {
	return c.factories, c.factoriesErr
}

func (c *fakeCatalogClient) GetTariffs(context.Context) ([]models.RawRecord, error) {
	return c.tariffs, c.tariffsErr
}

func TestRefreshBuildsSnapshot(t *testing.T) {
	client := &fakeCatalogClient{
		categories: map[string][]string{"sand": {"river", "career"}},
		factories: []models.RawRecord{
			{"название": "Завод А", "category": "sand", "subtype": "river", "price": 100.0},
		},
		tariffs: []models.RawRecord{
			{"название": "КамАЗ", "дистанция_мин": 0.0, "дистанция_макс": 50.0, "цена": 10000.0},
		},
	}
	repo := &fakeCatalogRepo{}
	flow := NewCatalogFlow(client, &fakeQuoteClient{}, repo)

	status, err := flow.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Loaded)
	assert.False(t, status.Degraded)
	assert.Equal(t, 1, status.Factories)
	assert.Equal(t, 1, status.TariffRows)

	require.NotNil(t, repo.snap)
	assert.Equal(t, "Завод А", repo.snap.Factories[0].Name)
	assert.Equal(t, "КамАЗ", repo.snap.Tariffs[0].VehicleName)
	assert.Equal(t, []string{"career", "river"}, repo.snap.Categories["sand"])
}

func TestRefreshDegradesIndependently(t *testing.T) {
	client := &fakeCatalogClient{
		categories:   map[string][]string{"sand": {"river"}},
		factoriesErr: errors.New("factories unavailable"),
		tariffs: []models.RawRecord{
			{"name": "КамАЗ", "distance_min": 0.0, "distance_max": 50.0},
		},
	}
	repo := &fakeCatalogRepo{}
	flow := NewCatalogFlow(client, &fakeQuoteClient{}, repo)

	status, err := flow.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Loaded)
	assert.True(t, status.Degraded)
	assert.Zero(t, status.Factories)
	assert.Equal(t, 1, status.TariffRows)
	require.Len(t, status.LoadMessages, 1)
	assert.Contains(t, status.LoadMessages[0], "factories")

	// the tariff side still replaced the old data
	tariffs, err := flow.Tariffs(context.Background())
	require.NoError(t, err)
	require.Len(t, tariffs, 1)
	assert.Equal(t, "КамАЗ", tariffs[0].VehicleName)
}

func TestReadViewsWithoutSnapshot(t *testing.T) {
	flow := NewCatalogFlow(&fakeCatalogClient{}, &fakeQuoteClient{}, &fakeCatalogRepo{})

	_, err := flow.Categories(context.Background())
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)

	_, err = flow.SpecialVehicles(context.Background())
	assert.ErrorIs(t, err, ErrCatalogNotLoaded)

	status := flow.Status(context.Background())
	assert.False(t, status.Loaded)
}

func TestTariffsViewFlagsOverflowBands(t *testing.T) {
	repo := &fakeCatalogRepo{snap: &models.CatalogSnapshot{
		Tariffs: []models.TariffRow{
			{VehicleName: "КамАЗ", DistanceMin: 100, DistanceMax: 100, PerKm: 120},
			{VehicleName: "КамАЗ", DistanceMin: 0, DistanceMax: 50, Notes: "городской"},
		},
	}}
	flow := NewCatalogFlow(&fakeCatalogClient{}, &fakeQuoteClient{}, repo)

	groups, err := flow.Tariffs(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Rows, 2)

	assert.False(t, groups[0].Rows[0].IsOverflowBand)
	assert.Equal(t, "городской", groups[0].Rows[0].Notes)
	assert.True(t, groups[0].Rows[1].IsOverflowBand)
	assert.Equal(t, models.OverflowNotesFallback, groups[0].Rows[1].Notes)
}

func TestFactoriesViewSortsProducts(t *testing.T) {
	repo := &fakeCatalogRepo{snap: &models.CatalogSnapshot{
		Factories: []models.Factory{
			{Name: "Plant", Products: []models.Product{{Subtype: "river"}, {Subtype: "career"}}},
		},
	}}
	flow := NewCatalogFlow(&fakeCatalogClient{}, &fakeQuoteClient{}, repo)

	factories, err := flow.Factories(context.Background())
	require.NoError(t, err)
	require.Len(t, factories, 1)
	assert.Equal(t, "career", factories[0].Products[0].Subtype)
}

func TestReloadRefreshesAfterUpstream(t *testing.T) {
	client := &fakeCatalogClient{
		categories: map[string][]string{},
		factories:  []models.RawRecord{{"name": "Plant"}},
		tariffs:    []models.RawRecord{},
	}
	repo := &fakeCatalogRepo{}
	flow := NewCatalogFlow(client, &fakeQuoteClient{}, repo)

	resp, err := flow.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "reloaded", resp.UpstreamMessage)
	assert.True(t, resp.Catalog.Loaded)
	assert.Equal(t, 1, resp.Catalog.Factories)
}
