package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverycalc/quote-gateway/models"
	"github.com/deliverycalc/quote-gateway/utils"
)

func TestCatalogReplaceWithoutRedis(t *testing.T) {
	repo := NewCatalogRepository(nil, time.Minute)
	snap := &models.CatalogSnapshot{LoadedAt: utils.UTCNow()}

	require.NoError(t, repo.Replace(context.Background(), snap))
	assert.Same(t, snap, repo.Snapshot(context.Background()))
}

func TestCatalogReplaceSurvivesMirrorFailure(t *testing.T) {
	// Nothing listens on this address, so every mirror write fails fast.
	rc := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rc.Close()

	repo := NewCatalogRepository(rc, time.Minute)
	snap := &models.CatalogSnapshot{
		Categories: map[string][]string{"sand": {"river"}},
		LoadedAt:   utils.UTCNow(),
	}

	require.NoError(t, repo.Replace(context.Background(), snap))
	assert.Same(t, snap, repo.Snapshot(context.Background()))
}

func TestCatalogReplaceRejectsNilSnapshot(t *testing.T) {
	repo := NewCatalogRepository(nil, time.Minute)
	assert.Error(t, repo.Replace(context.Background(), nil))
}
