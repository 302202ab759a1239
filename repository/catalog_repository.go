package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deliverycalc/quote-gateway/models"
)

const catalogSnapshotKey = "catalog:snapshot"

// catalogRepository keeps the live snapshot in memory behind an atomic
// pointer and mirrors it into Redis so a restart serves the last good
// catalog before the first upstream load completes. Redis is best effort;
// a nil client degrades to memory only.
type catalogRepository struct {
	current atomic.Pointer[models.CatalogSnapshot]
	rc      *redis.Client
	ttl     time.Duration
}

// NewCatalogRepository creates a catalog repository. rc may be nil.
func NewCatalogRepository(rc *redis.Client, ttl time.Duration) CatalogRepository {
	return &catalogRepository{rc: rc, ttl: ttl}
}

func (r *catalogRepository) Snapshot(ctx context.Context) *models.CatalogSnapshot {
	if snap := r.current.Load(); snap != nil {
		return snap
	}
	snap := r.warmCopy(ctx)
	if snap != nil {
		r.current.CompareAndSwap(nil, snap)
	}
	return r.current.Load()
}

func (r *catalogRepository) Replace(ctx context.Context, snapshot *models.CatalogSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("catalog: nil snapshot")
	}
	r.current.Store(snapshot)

	if r.rc == nil {
		return nil
	}
	// The in-memory swap above is the source of truth. A mirror failure
	// only costs the warm start, so it must not fail the refresh.
	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("Catalog snapshot mirror skipped: marshal failed: %v", err)
		return nil
	}
	if err := r.rc.Set(ctx, catalogSnapshotKey, payload, r.ttl).Err(); err != nil {
		log.Printf("Catalog snapshot mirror skipped: %v", err)
	}
	return nil
}

func (r *catalogRepository) warmCopy(ctx context.Context) *models.CatalogSnapshot {
	if r.rc == nil {
		return nil
	}
	payload, err := r.rc.Get(ctx, catalogSnapshotKey).Bytes()
	if err != nil {
		return nil
	}
	var snap models.CatalogSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil
	}
	return &snap
}
