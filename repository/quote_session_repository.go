package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deliverycalc/quote-gateway/models"
)

const quoteSessionKeyPrefix = "quote:session:"

// quoteSessionRepository persists sessions as JSON in Redis with a TTL.
type quoteSessionRepository struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewQuoteSessionRepository creates a Redis backed session repository.
func NewQuoteSessionRepository(rc *redis.Client, ttl time.Duration) QuoteSessionRepository {
	return &quoteSessionRepository{rc: rc, ttl: ttl}
}

func (r *quoteSessionRepository) Save(ctx context.Context, session *models.QuoteSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", session.ID, err)
	}
	if err := r.rc.Set(ctx, quoteSessionKeyPrefix+session.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: store %s: %w", session.ID, err)
	}
	return nil
}

func (r *quoteSessionRepository) ByID(ctx context.Context, id string) (*models.QuoteSession, error) {
	payload, err := r.rc.Get(ctx, quoteSessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: load %s: %w", id, err)
	}
	var session models.QuoteSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return &session, nil
}

// memorySessionRepository is the fallback when Redis is disabled. Sessions
// expire lazily on read.
type memorySessionRepository struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]memorySessionEntry
}

type memorySessionEntry struct {
	session   models.QuoteSession
	expiresAt time.Time
}

// NewMemorySessionRepository creates an in-process session repository.
func NewMemorySessionRepository(ttl time.Duration) QuoteSessionRepository {
	return &memorySessionRepository{
		ttl:      ttl,
		sessions: make(map[string]memorySessionEntry),
	}
}

func (r *memorySessionRepository) Save(_ context.Context, session *models.QuoteSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = memorySessionEntry{
		session:   *session,
		expiresAt: time.Now().Add(r.ttl),
	}
	return nil
}

func (r *memorySessionRepository) ByID(_ context.Context, id string) (*models.QuoteSession, error) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		r.mu.Lock()
		delete(r.sessions, id)
		r.mu.Unlock()
		return nil, nil
	}
	session := entry.session
	return &session, nil
}
