// Package testing provides test utilities and database setup for testing the quote gateway
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/deliverycalc/quote-gateway/models"
	"github.com/deliverycalc/quote-gateway/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateQuoteHistory creates a persisted quote submission with the given transport type
func (tf *TestFixtures) CreateQuoteHistory(transportType models.TransportType) (*models.QuoteHistory, error) {
	record := &models.QuoteHistory{
		UUID:          uuid.New(),
		UploadLat:     55.0 + rand.Float64(),
		UploadLon:     37.0 + rand.Float64(),
		TransportType: string(transportType),
		ItemCount:     1 + rand.Intn(5),
		ClientIP:      fmt.Sprintf("10.0.0.%d", rand.Intn(254)+1),
		VariantCount:  1 + rand.Intn(3),
		TransportName: "КамАЗ 20т",
		TotalCost:     float64(10000 + rand.Intn(90000)),
		TotalWeight:   float64(1+rand.Intn(20)) * 1.5,
		CreatedAt:     utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create quote history fixture: %w", err)
	}

	return record, nil
}
