package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/deliverycalc/quote-gateway/models"
)

// quoteHistoryRepository implements QuoteHistoryRepository using GORM
type quoteHistoryRepository struct {
	*BaseRepository[models.QuoteHistory]
}

// NewQuoteHistoryRepository creates a new quote history repository
func NewQuoteHistoryRepository(db *gorm.DB) QuoteHistoryRepository {
	return &quoteHistoryRepository{
		BaseRepository: NewBaseRepository[models.QuoteHistory](db),
	}
}

// Recent returns the most recent history rows, newest first.
func (r *quoteHistoryRepository) Recent(ctx context.Context, limit int) ([]*models.QuoteHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.ByFilter(ctx, models.QuoteHistoryFilter{Limit: limit})
}

// ByFilter retrieves history rows matching the filter, newest first.
func (r *quoteHistoryRepository) ByFilter(ctx context.Context, filter models.QuoteHistoryFilter) ([]*models.QuoteHistory, error) {
	db := r.getDB(ctx).Model(&models.QuoteHistory{})

	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.TransportType != nil {
		db = db.Where("transport_type = ?", *filter.TransportType)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	db = db.Order("created_at DESC")
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	var rows []*models.QuoteHistory
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find quote history: %w", err)
	}
	return rows, nil
}
