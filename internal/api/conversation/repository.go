package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tripcanvas/tripcanvas/internal/types"
)

// ErrSessionNotFound is returned when no session exists for the given ID.
var ErrSessionNotFound = fmt.Errorf("session not found")

// Repository persists conversation sessions. Sessions carry no durability
// guarantee beyond their TTL; the cache-backed implementation is the default.
type Repository interface {
	CreateSession(ctx context.Context, session *types.Session) error
	GetSession(ctx context.Context, sessionID string) (*types.Session, error)
	UpdateSession(ctx context.Context, session *types.Session) error
	DeleteSession(ctx context.Context, sessionID string) error
}

var _ Repository = (*CacheRepository)(nil)

// CacheRepository keeps sessions in process memory with a TTL, the way a
// browser tab's state lives only as long as the tab.
type CacheRepository struct {
	cache *cache.Cache
}

func NewCacheRepository(ttl time.Duration) *CacheRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CacheRepository{cache: cache.New(ttl, 1*time.Hour)}
}

func (r *CacheRepository) CreateSession(_ context.Context, session *types.Session) error {
	if _, exists := r.cache.Get(session.ID); exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	r.cache.SetDefault(session.ID, session)
	return nil
}

func (r *CacheRepository) GetSession(_ context.Context, sessionID string) (*types.Session, error) {
	v, ok := r.cache.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return v.(*types.Session), nil
}

func (r *CacheRepository) UpdateSession(_ context.Context, session *types.Session) error {
	session.UpdatedAt = time.Now()
	r.cache.SetDefault(session.ID, session)
	return nil
}

func (r *CacheRepository) DeleteSession(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}
