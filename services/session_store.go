package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

const DefaultSessionTTL = 30 * 24 * time.Hour

type Session struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore keeps server side sessions so tokens can be revoked on logout.
type SessionStore interface {
	Create(ctx context.Context, userID uint) (*Session, error)
	Put(ctx context.Context, session Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Expire(ctx context.Context, id string) error
}

type CacheSessionStore struct {
	cache *cache.Cache[Session]
	raw   *ristretto.Cache
	ttl   time.Duration
}

func NewCacheSessionStore(ttl time.Duration) (*CacheSessionStore, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	raw, err := newRistrettoCache()
	if err != nil {
		return nil, err
	}
	return &CacheSessionStore{
		cache: cache.New[Session](ristretto_store.NewRistretto(raw)),
		raw:   raw,
		ttl:   ttl,
	}, nil
}

func (s *CacheSessionStore) Create(ctx context.Context, userID uint) (*Session, error) {
	session := Session{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now()}
	if err := s.Put(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *CacheSessionStore) Put(ctx context.Context, session Session) error {
	if err := s.cache.Set(ctx, session.ID, session, store.WithExpiration(s.ttl), store.WithCost(1)); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	// ristretto applies writes asynchronously
	s.raw.Wait()
	return nil
}

func (s *CacheSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.cache.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return &session, nil
}

func (s *CacheSessionStore) Expire(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to expire session: %w", err)
	}
	s.raw.Wait()
	return nil
}
