// Package repository provides data access layer implementations and interfaces for the gateway's stores
package repository

import (
	"context"

	"github.com/deliverycalc/quote-gateway/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// CatalogRepository holds the current catalog snapshot. Reads never block
// reloads; a reload builds a complete snapshot and swaps it in atomically.
type CatalogRepository interface {
	Snapshot(ctx context.Context) *models.CatalogSnapshot
	Replace(ctx context.Context, snapshot *models.CatalogSnapshot) error
}

// QuoteSessionRepository persists quote sessions for the session TTL.
type QuoteSessionRepository interface {
	Save(ctx context.Context, session *models.QuoteSession) error
	ByID(ctx context.Context, id string) (*models.QuoteSession, error)
}

// QuoteHistoryRepository defines operations for persisted quote outcomes
type QuoteHistoryRepository interface {
	Save(ctx context.Context, entity *models.QuoteHistory) error
	Recent(ctx context.Context, limit int) ([]*models.QuoteHistory, error)
	ByFilter(ctx context.Context, filter models.QuoteHistoryFilter) ([]*models.QuoteHistory, error)
}
