// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverycalc/quote-gateway/models"
	"github.com/deliverycalc/quote-gateway/repository"
	testingutil "github.com/deliverycalc/quote-gateway/testing"
	"github.com/deliverycalc/quote-gateway/utils"
)

func TestQuoteHistoryRepository(t *testing.T) {
	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			t.Logf("Warning: failed to cleanup test database: %v", cleanupErr)
		}
	}()

	repo := repository.NewQuoteHistoryRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	t.Run("SaveAndRecent", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		first, err := fixtures.CreateQuoteHistory(models.TransportAuto)
		require.NoError(t, err)
		_, err = fixtures.CreateQuoteHistory(models.TransportManipulator)
		require.NoError(t, err)

		rows, err := repo.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		found := false
		for _, row := range rows {
			if row.UUID == first.UUID {
				found = true
				assert.Equal(t, string(models.TransportAuto), row.TransportType)
				assert.Equal(t, first.ItemCount, row.ItemCount)
			}
		}
		assert.True(t, found)
	})

	t.Run("RecentDefaultLimit", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		_, err := fixtures.CreateQuoteHistory(models.TransportAuto)
		require.NoError(t, err)

		rows, err := repo.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("ByFilterUUID", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		target, err := fixtures.CreateQuoteHistory(models.TransportAuto)
		require.NoError(t, err)
		_, err = fixtures.CreateQuoteHistory(models.TransportAuto)
		require.NoError(t, err)

		rows, err := repo.ByFilter(ctx, models.QuoteHistoryFilter{UUID: &target.UUID})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, target.UUID, rows[0].UUID)
	})

	t.Run("ByFilterTransportType", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		_, err := fixtures.CreateQuoteHistory(models.TransportAuto)
		require.NoError(t, err)
		_, err = fixtures.CreateQuoteHistory(models.TransportLongHaul)
		require.NoError(t, err)

		rows, err := repo.ByFilter(ctx, models.QuoteHistoryFilter{
			TransportType: utils.ToPtr(string(models.TransportLongHaul)),
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, string(models.TransportLongHaul), rows[0].TransportType)
	})

	t.Run("ByFilterCreatedWindow", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		_, err := fixtures.CreateQuoteHistory(models.TransportAuto)
		require.NoError(t, err)

		future := utils.UTCNowAdd(1 * time.Hour)
		rows, err := repo.ByFilter(ctx, models.QuoteHistoryFilter{CreatedAfter: &future})
		require.NoError(t, err)
		assert.Empty(t, rows)

		past := utils.UTCNowAdd(-1 * time.Hour)
		rows, err = repo.ByFilter(ctx, models.QuoteHistoryFilter{CreatedAfter: &past})
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})
}
