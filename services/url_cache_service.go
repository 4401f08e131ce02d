package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/rs/zerolog/log"
)

// presigned read links live 15 minutes, cached entries expire a bit earlier
const cacheCleanupInterval = 12 * time.Minute

type URLCacheServiceProvider interface {
	GetReadURL(ctx context.Context, objectKey string) (string, error)
}

type URLCacheService struct {
	cache      *cache.LoadableCache[string]
	bucketName string
}

func newRistrettoCache() (*ristretto.Cache, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e7,
		MaxCost:     1 << 27,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return ristrettoCache, nil
}

func NewURLCacheService(awsService AWSServiceProvider, bucketName string) (*URLCacheService, error) {
	ristrettoCache, err := newRistrettoCache()
	if err != nil {
		return nil, err
	}
	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)

	loadFunction := func(ctx context.Context, key any) (string, []store.Option, error) {
		objectKey, ok := key.(string)
		if !ok {
			return "", nil, fmt.Errorf("invalid key type provided to URL cache: expected string, got %T", key)
		}
		log.Debug().Str("key", objectKey).Msg("url cache miss")
		url, err := awsService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
		return url, []store.Option{store.WithExpiration(cacheCleanupInterval)}, err
	}

	return &URLCacheService{
		cache:      cache.NewLoadable[string](loadFunction, cache.New[string](ristrettoStore)),
		bucketName: bucketName,
	}, nil
}

func (s *URLCacheService) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", nil
	}
	return s.cache.Get(ctx, objectKey)
}
