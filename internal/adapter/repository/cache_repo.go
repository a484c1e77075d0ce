package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"solclone/internal/config"
	"solclone/internal/entity"
	"solclone/internal/usecase"
)

// Compile-time check
var _ usecase.CacheRepository = (*goCacheRepo)(nil)

// Cache keys
const sourceKeyPrefix = "contract_source_"

type goCacheRepo struct {
	cache  *cache.Cache
	logger *zap.Logger
	cfg    config.CacheConfig
}

// NewGoCacheRepo caches normalized contract sources per chain and address so
// a proxy whose implementation was already fetched in this run does not cost
// a second explorer round trip.
func NewGoCacheRepo(cfg config.CacheConfig, logger *zap.Logger) usecase.CacheRepository {
	defaultTTL := cfg.GetDefaultExpiration()
	cleanupInterval := cfg.GetCleanupInterval()

	c := cache.New(defaultTTL, cleanupInterval)
	logger.Info("Initialized go-cache",
		zap.Duration("defaultTTL", defaultTTL),
		zap.Duration("cleanupInterval", cleanupInterval))

	return &goCacheRepo{
		cache:  c,
		logger: logger.Named("GoCacheRepo"),
		cfg:    cfg,
	}
}

func (r *goCacheRepo) GetSource(ctx context.Context, chainID int64, address string) (*entity.ContractSource, error) {
	key := r.sourceKey(chainID, address)
	if x, found := r.cache.Get(key); found {
		if src, ok := x.(*entity.ContractSource); ok {
			r.logger.Debug("Cache hit", zap.String("key", key))
			return src, nil
		}
		r.logger.Warn("Cache data type mismatch for key", zap.String("key", key), zap.Any("type", fmt.Sprintf("%T", x)))
		// Treat type mismatch as cache miss
	}
	r.logger.Debug("Cache miss", zap.String("key", key))
	// Return nil, nil for cache miss (usecase layer interprets this)
	return nil, nil
}

func (r *goCacheRepo) SetSource(ctx context.Context, chainID int64, address string, src *entity.ContractSource, ttl time.Duration) error {
	key := r.sourceKey(chainID, address)
	if ttl <= 0 {
		ttl = r.cfg.GetDefaultExpiration() // Use default TTL if zero or negative
	}
	r.cache.Set(key, src, ttl)
	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// Helper to generate consistent cache keys
func (r *goCacheRepo) sourceKey(chainID int64, address string) string {
	return sourceKeyPrefix + strconv.FormatInt(chainID, 10) + "_" + strings.ToLower(address)
}
